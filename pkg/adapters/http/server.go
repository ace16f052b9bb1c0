// Package http serves the engine over a JSON REST API: component
// discovery, chain storage, and chain execution.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/strandkit/strand"
	"github.com/strandkit/strand/pkg/domain"
	"github.com/strandkit/strand/pkg/ports"
	"github.com/strandkit/strand/pkg/registry"
)

// Engine defines the interface for the chain engine core. The facade
// type strand.Engine satisfies it.
type Engine interface {
	ports.ChainRunner

	Registries() *registry.Set
	Store() ports.ChainStore
	ParseChain(data []byte) (*domain.Chain, error)
	SaveChain(ctx context.Context, doc ports.ChainDocument) error
	LoadChain(ctx context.Context, id string) (*domain.Chain, error)
	Mermaid(chain *domain.Chain, trail domain.Trail) string
}

// Server exposes an Engine over HTTP.
type Server struct {
	Engine Engine
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine) http.Handler {
	server := &Server{Engine: engine}
	r := chi.NewRouter()

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)

	r.Get("/components", server.ListComponents)
	r.Get("/components/{id}", server.GetComponent)

	r.Get("/chains", server.ListChains)
	r.Post("/chains", server.SaveChain)
	r.Get("/chains/{id}", server.GetChain)
	r.Delete("/chains/{id}", server.DeleteChain)
	r.Post("/chains/{id}/run", server.RunChain)
	r.Get("/chains/{id}/graph", server.GetChainGraph)

	r.Post("/run", server.RunInline)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "strand-http",
		"version": strings.TrimSpace(strand.Version),
	})
}

// ListComponents handles the GET /components request. An optional
// ?tag= query filters each registry by tag.
func (s *Server) ListComponents(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")
	set := s.Engine.Registries()
	writeJSON(w, http.StatusOK, map[string][]string{
		"models":     set.Models.List(tag),
		"actions":    set.Actions.List(tag),
		"ai_actions": set.AI.List(tag),
	})
}

// GetComponent handles the GET /components/{id} request. The id is
// looked up across all registries, models first.
func (s *Server) GetComponent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	set := s.Engine.Registries()

	if set.Models.Has(id) {
		model, err := set.Models.Get(id)
		if err == nil {
			writeJSON(w, http.StatusOK, model.ToMap())
			return
		}
	}
	if node, err := set.AI.Get(id); err == nil {
		writeJSON(w, http.StatusOK, node.ToMap())
		return
	}
	if node, err := set.Actions.Get(id); err == nil {
		writeJSON(w, http.StatusOK, node.ToMap())
		return
	}
	http.Error(w, fmt.Sprintf("component %q not found", id), http.StatusNotFound)
}

// SaveChain handles the POST /chains request.
func (s *Server) SaveChain(w http.ResponseWriter, r *http.Request) {
	var doc ports.ChainDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		slog.Warn("SaveChain: Invalid request body", "err", err)
		return
	}
	if doc.ID == "" {
		http.Error(w, "Chain id is required", http.StatusBadRequest)
		return
	}
	if err := s.Engine.SaveChain(r.Context(), doc); err != nil {
		http.Error(w, fmt.Sprintf("Save error: %v", err), http.StatusInternalServerError)
		slog.Error("SaveChain failed", "id", doc.ID, "err", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": doc.ID})
}

// ListChains handles the GET /chains request.
func (s *Server) ListChains(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.Store().List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		slog.Error("ListChains failed", "err", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"chains": ids})
}

// GetChain handles the GET /chains/{id} request.
func (s *Server) GetChain(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.Engine.Store().Load(r.Context(), id)
	if err != nil {
		writeStoreError(w, id, err)
		return
	}

	resp := map[string]any{
		"id":          doc.ID,
		"name":        doc.Name,
		"description": doc.Description,
		"definition":  doc.Definition,
	}
	// Content hash of the resolved chain, for change detection.
	if chain, err := s.Engine.LoadChain(r.Context(), id); err == nil {
		if hash, err := chain.Hash(); err == nil {
			resp["hash"] = hash
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteChain handles the DELETE /chains/{id} request.
func (s *Server) DeleteChain(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Engine.Store().Delete(r.Context(), id); err != nil {
		writeStoreError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunRequest is the body of execution requests.
type RunRequest struct {
	Input      any            `json:"input"`
	Definition map[string]any `json:"definition,omitempty"`
}

// RunResponse carries the main output and the per-node trail.
type RunResponse struct {
	Output any          `json:"output"`
	Trail  domain.Trail `json:"trail"`
}

// RunChain handles the POST /chains/{id}/run request.
func (s *Server) RunChain(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body RunRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		slog.Warn("RunChain: Invalid request body", "err", err)
		return
	}

	chain, err := s.Engine.LoadChain(r.Context(), id)
	if err != nil {
		writeStoreError(w, id, err)
		return
	}
	s.execute(w, r, chain, body.Input)
}

// RunInline handles the POST /run request: the chain definition travels
// in the request body instead of being loaded from the store.
func (s *Server) RunInline(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		slog.Warn("RunInline: Invalid request body", "err", err)
		return
	}
	if body.Definition == nil {
		http.Error(w, "Chain definition is required", http.StatusBadRequest)
		return
	}

	raw, err := json.Marshal(body.Definition)
	if err != nil {
		http.Error(w, "Invalid chain definition", http.StatusBadRequest)
		return
	}
	chain, err := s.Engine.ParseChain(raw)
	if err != nil {
		http.Error(w, fmt.Sprintf("Build error: %v", err), http.StatusBadRequest)
		slog.Warn("RunInline: build failed", "err", err)
		return
	}
	s.execute(w, r, chain, body.Input)
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request, chain *domain.Chain, input any) {
	output, trail, err := s.Engine.Run(r.Context(), chain, input, nil)
	if err != nil {
		http.Error(w, fmt.Sprintf("Run error: %v", err), http.StatusUnprocessableEntity)
		slog.Error("Chain run failed", "err", err)
		return
	}
	writeJSON(w, http.StatusOK, RunResponse{Output: output, Trail: trail})
}

// GetChainGraph handles the GET /chains/{id}/graph request. It returns
// the chain rendered as a Mermaid flowchart.
func (s *Server) GetChainGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	chain, err := s.Engine.LoadChain(r.Context(), id)
	if err != nil {
		writeStoreError(w, id, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, s.Engine.Mermaid(chain, nil))
}

func writeStoreError(w http.ResponseWriter, id string, err error) {
	status := http.StatusInternalServerError
	if isNotFound(err) {
		status = http.StatusNotFound
	}
	http.Error(w, fmt.Sprintf("chain %q: %v", id, err), status)
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Response encode failed", "err", err)
	}
}
