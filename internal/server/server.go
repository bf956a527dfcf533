// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes the analysis pipeline over a small JSON API.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/agentberlin/pagescope"
	"github.com/agentberlin/pagescope/internal/version"
)

// Server represents the HTTP server
type Server struct {
	analyzer *pagescope.Analyzer
	mux      *http.ServeMux
}

// NewServer creates a new HTTP server
func NewServer(analyzer *pagescope.Analyzer) *Server {
	s := &Server{
		analyzer: analyzer,
		mux:      http.NewServeMux(),
	}

	// Register routes
	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// CORS middleware
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	// Handle preflight
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Logging middleware
	log.Printf("%s %s", r.Method, r.URL.Path)

	// Serve request
	s.mux.ServeHTTP(w, r)
}

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/api/v1/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/version", s.handleGetVersion)
	s.mux.HandleFunc("/api/v1/modes", s.handleModes)
	s.mux.HandleFunc("/api/v1/analyze", s.handleAnalyze)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleGetVersion returns the application version
func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"version": version.CurrentVersion,
	})
}

// handleModes returns the supported analysis mode names
func (s *Server) handleModes(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"modes": pagescope.ModeNames(),
	})
}

// analyzeRequest is the body of POST /api/v1/analyze.
type analyzeRequest struct {
	URL   string `json:"url"`
	Mode  string `json:"mode"`
	Proxy string `json:"proxy,omitempty"`
}

// contentResponse is the response shape for content modes.
type contentResponse struct {
	URL   string                       `json:"url"`
	Items []pagescope.ContentCandidate `json:"items"`
	Found int                          `json:"found"`
}

// callsResponse is the response shape for network modes.
type callsResponse struct {
	URL      string                  `json:"url"`
	Items    []pagescope.NetworkCall `json:"items"`
	Count    int                     `json:"count"`
	PageInfo *pagescope.PageInfo     `json:"pageInfo,omitempty"`
}

// handleAnalyze handles POST /api/v1/analyze
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "URL required")
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), pagescope.Request{
		URL:   req.URL,
		Mode:  req.Mode,
		Proxy: req.Proxy,
	})
	if err != nil {
		code, kind := classifyError(err)
		writeError(w, code, kind, err.Error())
		return
	}

	if result.Mode == "posts" {
		writeJSON(w, http.StatusOK, contentResponse{
			URL:   result.URL,
			Items: nonNilContent(result.Content),
			Found: len(result.Content),
		})
		return
	}
	writeJSON(w, http.StatusOK, callsResponse{
		URL:      result.URL,
		Items:    nonNilCalls(result.Calls),
		Count:    len(result.Calls),
		PageInfo: result.PageInfo,
	})
}

// classifyError maps pipeline errors to HTTP status codes and stable
// error kinds.
func classifyError(err error) (int, string) {
	var upstream *pagescope.UpstreamError
	switch {
	case errors.Is(err, pagescope.ErrInvalidURL),
		errors.Is(err, pagescope.ErrUnsupportedMode):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, pagescope.ErrDeadline):
		return http.StatusGatewayTimeout, "timeout"
	case errors.As(err, &upstream):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func nonNilContent(items []pagescope.ContentCandidate) []pagescope.ContentCandidate {
	if items == nil {
		return []pagescope.ContentCandidate{}
	}
	return items
}

func nonNilCalls(items []pagescope.NetworkCall) []pagescope.NetworkCall {
	if items == nil {
		return []pagescope.NetworkCall{}
	}
	return items
}
