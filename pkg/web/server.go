// Package web serves the graph and its filtered view as JSON, pushes
// load/view updates over SSE, and hosts the static exploration page.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ritzau/graph-explorer/pkg/logging"
	"github.com/ritzau/graph-explorer/pkg/model"
	"github.com/ritzau/graph-explorer/pkg/pipeline"
	"github.com/ritzau/graph-explorer/pkg/pubsub"
)

//go:embed static/*
var staticFiles embed.FS

// LegendEntry is one selectable chip of the legend UI: an experiment
// tag, its assigned color and its current visibility.
type LegendEntry struct {
	Tag     string `json:"tag"`
	Color   string `json:"color"`
	Visible bool   `json:"visible"`
}

// Status lets the UI distinguish "no graph loaded" from "everything
// toggled off": both yield an empty view, for different reasons.
type Status struct {
	State       string `json:"state"` // "empty" or "loaded"
	Nodes       int    `json:"nodes"`
	Edges       int    `json:"edges"`
	Experiments int    `json:"experiments"`
}

// Server exposes the pipeline over HTTP.
type Server struct {
	router    *mux.Router
	pipeline  *pipeline.Pipeline
	publisher pubsub.Publisher
	source    string
}

// NewServer creates a web server over the given pipeline. The source is
// what POST /api/reload loads again.
func NewServer(p *pipeline.Pipeline, publisher pubsub.Publisher, source string) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		pipeline:  p,
		publisher: publisher,
		source:    source,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(logging.RequestIDMiddleware)

	// SSE subscription endpoints
	s.router.HandleFunc("/api/subscribe/load_status", s.handleSubscribe(pubsub.TopicLoadStatus)).Methods("GET")
	s.router.HandleFunc("/api/subscribe/view", s.handleSubscribe(pubsub.TopicView)).Methods("GET")

	// API routes
	s.router.HandleFunc("/api/status", s.handleStatus).Methods("GET")
	s.router.HandleFunc("/api/graph", s.handleGraph).Methods("GET")
	s.router.HandleFunc("/api/view", s.handleView).Methods("GET")
	s.router.HandleFunc("/api/experiments", s.handleExperiments).Methods("GET")
	s.router.HandleFunc("/api/experiments/{tag}/toggle", s.handleToggle).Methods("POST")
	s.router.HandleFunc("/api/nodes/{id}/neighbors", s.handleNeighbors).Methods("GET")
	s.router.HandleFunc("/api/reload", s.handleReload).Methods("POST")

	// Serve static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		logging.Fatal("embedded static files missing", "error", err)
	}
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(staticFS)))
}

// Router returns the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleSubscribe(topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		// Initial comment establishes the stream (Safari compatibility)
		fmt.Fprintf(w, ": connected\n\n")
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}

		sub, err := s.publisher.Subscribe(r.Context(), topic)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer sub.Close()

		for event := range sub.Events() {
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.Debug("sse write failed, dropping subscriber", "topic", topic, "error", err)
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := Status{State: s.pipeline.State().String()}
	if g := s.pipeline.Graph(); g != nil {
		status.Nodes = len(g.Nodes)
		status.Edges = len(g.Edges)
		status.Experiments = len(g.Experiments)
	}
	writeJSON(w, status)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	g := s.pipeline.Graph()
	if g == nil {
		http.Error(w, "no graph loaded", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, g)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.pipeline.View())
}

func (s *Server) handleExperiments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.legend())
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]

	g := s.pipeline.Graph()
	if g == nil {
		http.Error(w, "no graph loaded", http.StatusConflict)
		return
	}
	if _, known := g.ExperimentColors[tag]; !known {
		http.Error(w, fmt.Sprintf("unknown experiment: %s", tag), http.StatusNotFound)
		return
	}

	s.pipeline.Toggle(tag)
	writeJSON(w, s.legend())
}

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	nodeID := mux.Vars(r)["id"]

	if s.pipeline.State() == pipeline.StateEmpty {
		http.Error(w, "no graph loaded", http.StatusServiceUnavailable)
		return
	}

	neighbors := s.pipeline.Neighbors(nodeID)
	if neighbors == nil {
		neighbors = []model.Node{}
	}
	writeJSON(w, neighbors)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	go func() {
		if err := s.pipeline.Load(context.Background(), s.source); err != nil {
			logging.Error("reload failed", "source", s.source, "error", err)
		}
	}()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) legend() []LegendEntry {
	g := s.pipeline.Graph()
	if g == nil {
		return []LegendEntry{}
	}
	selection := s.pipeline.Selection()

	entries := make([]LegendEntry, 0, len(g.Experiments))
	for _, tag := range g.Experiments {
		entries = append(entries, LegendEntry{
			Tag:     tag,
			Color:   g.ExperimentColors[tag],
			Visible: selection[tag],
		})
	}
	return entries
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("encoding response", "error", err)
	}
}

// Start starts the web server on the specified port.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logging.Info("starting web server", "addr", fmt.Sprintf("http://localhost%s", addr))
	return http.ListenAndServe(addr, s.router)
}
