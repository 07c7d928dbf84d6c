package model

// Palette is the fixed, ordered list of colors reused round-robin across
// experiments. The i-th distinct experiment (first-seen order) gets
// Palette[i % len(Palette)].
var Palette = []string{
	"#1f77b4",
	"#ff7f0e",
	"#2ca02c",
	"#d62728",
	"#9467bd",
	"#8c564b",
	"#e377c2",
	"#7f7f7f",
}
