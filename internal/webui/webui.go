// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package webui implements the minimal read-only HTTP facade of spec.md
// §4.8: /search, /autocomplete and /doc over the bleve index the
// Search Index Bridge maintains, built on stdlib net/http since the
// surface is three small JSON endpoints with no templating needs.
package webui

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Server exposes the search facade over a bleve index.
type Server struct {
	index bleve.Index
	mux   *http.ServeMux
}

// New builds a Server backed by idx and registers its routes.
func New(idx bleve.Index) *Server {
	s := &Server{index: idx, mux: http.NewServeMux()}
	s.mux.HandleFunc("/search", s.handleSearch)
	s.mux.HandleFunc("/autocomplete", s.handleAutocomplete)
	s.mux.HandleFunc("/doc", s.handleDoc)
	return s
}

// ServeHTTP implements http.Handler by delegating to the registered mux.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type searchResponse struct {
	Total int64            `json:"total"`
	Hits  []json.RawMessage `json:"hits"`
}

// handleSearch runs a free-text query over intext/intitle/inurl and
// returns each matching hit (ID, score, the requested stored fields and
// highlight fragments) as JSON, per spec.md
// §4.8's "query surface is read-only and exposes no store internals"
// rule.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		http.Error(w, "missing q parameter", http.StatusBadRequest)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	mq := bleve.NewMatchQuery(q)
	req := bleve.NewSearchRequestOptions(mq, limit, 0, false)
	req.Fields = []string{"intitle", "inurl", "filetype", "server", "share"}
	req.Highlight = bleve.NewHighlight()

	result, err := s.index.Search(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := searchResponse{Total: int64(result.Total)}
	for _, hit := range result.Hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		resp.Hits = append(resp.Hits, raw)
	}
	writeJSON(w, resp)
}

// handleAutocomplete runs a prefix query against intitle, returning just
// the matching titles, for a type-ahead client.
func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("q")
	if prefix == "" {
		http.Error(w, "missing q parameter", http.StatusBadRequest)
		return
	}
	pq := query.NewPrefixQuery(prefix)
	pq.SetField("intitle")
	req := bleve.NewSearchRequestOptions(pq, 10, 0, false)
	req.Fields = []string{"intitle"}

	result, err := s.index.Search(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var titles []string
	for _, hit := range result.Hits {
		if t, ok := hit.Fields["intitle"].(string); ok {
			titles = append(titles, t)
		}
	}
	writeJSON(w, titles)
}

// handleDoc returns the full indexed document for the id query parameter
// (the document's inurl, used as the bleve document ID). The id rides in
// the query string rather than the path because document IDs are
// themselves URLs, and ServeMux would redirect-clean the double slashes a
// path-embedded URL carries.
func (s *Server) handleDoc(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing id parameter", http.StatusBadRequest)
		return
	}
	q := query.NewDocIDQuery([]string{id})
	req := bleve.NewSearchRequestOptions(q, 1, 0, false)
	req.Fields = []string{"*"}
	result, err := s.index.Search(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if result.Total == 0 {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, result.Hits[0].Fields)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
