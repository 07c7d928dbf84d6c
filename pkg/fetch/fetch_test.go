package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func shortRetryDelay(t *testing.T) {
	t.Helper()
	old := retryDelay
	retryDelay = 5 * time.Millisecond
	t.Cleanup(func() { retryDelay = old })
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr bool
	}{
		{"local csv", "data/graph.csv", false},
		{"url csv", "https://example.com/graph.csv", false},
		{"uppercase extension", "DATA.CSV", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"wrong extension", "graph.json", true},
		{"no extension", "graph", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.source)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.source, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidSource) {
				t.Errorf("Expected ErrInvalidSource, got %v", err)
			}
		})
	}
}

func TestIsLocal(t *testing.T) {
	if !IsLocal("data/graph.csv") {
		t.Error("Expected relative path to be local")
	}
	if !IsLocal("/tmp/graph.csv") {
		t.Error("Expected absolute path to be local")
	}
	if IsLocal("http://example.com/graph.csv") {
		t.Error("Expected http URL to be remote")
	}
	if IsLocal("https://example.com/graph.csv") {
		t.Error("Expected https URL to be remote")
	}
}

func TestFetchLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.csv")
	content := "model;from_node;relationship;to_node;experiment\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	data, err := Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != content {
		t.Errorf("Unexpected content: %q", data)
	}
}

func TestFetchMissingLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")

	_, err := Fetch(context.Background(), path)
	if !errors.Is(err, ErrFetch) {
		t.Errorf("Expected ErrFetch, got %v", err)
	}
}

func TestFetchInvalidSourceBeforeIO(t *testing.T) {
	_, err := Fetch(context.Background(), "graph.txt")
	if !errors.Is(err, ErrInvalidSource) {
		t.Errorf("Expected ErrInvalidSource, got %v", err)
	}
}

func TestFetchURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("model;from_node\n"))
	}))
	defer server.Close()

	data, err := Fetch(context.Background(), server.URL+"/graph.csv")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "model;from_node\n" {
		t.Errorf("Unexpected content: %q", data)
	}
}

func TestFetchURLNotFound(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := Fetch(context.Background(), server.URL+"/graph.csv")
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("Expected ErrFetch, got %v", err)
	}
	// 4xx responses must not be retried
	if calls.Load() != 1 {
		t.Errorf("Expected 1 request, got %d", calls.Load())
	}
}

func TestFetchURLRetriesServerErrors(t *testing.T) {
	shortRetryDelay(t)

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok\n"))
	}))
	defer server.Close()

	data, err := Fetch(context.Background(), server.URL+"/graph.csv")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "ok\n" {
		t.Errorf("Unexpected content: %q", data)
	}
	if calls.Load() != 2 {
		t.Errorf("Expected 2 requests, got %d", calls.Load())
	}
}

func TestFetchURLCancelled(t *testing.T) {
	shortRetryDelay(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Fetch(ctx, server.URL+"/graph.csv")
	if err == nil {
		t.Fatal("Expected error for cancelled context")
	}
}
