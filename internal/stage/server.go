package stage

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kshimizu/taskboard/internal/eventbus"
	"github.com/kshimizu/taskboard/pkg/cerr"
)

// Remover deletes a stage after its eligibility check. Implemented by the
// board coordinator so deletions serialize with confirmed moves.
type Remover interface {
	RemoveStage(ctx context.Context, stageID string) error
}

type Server struct {
	catalog *Catalog
	remover Remover
	bus     *eventbus.Bus
}

func NewServer(catalog *Catalog, remover Remover, bus *eventbus.Bus) *Server {
	return &Server{
		catalog: catalog,
		remover: remover,
		bus:     bus,
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/stages", s.handleList)
	r.Post("/stages", s.handleCreate)
	r.Put("/stages/{id}", s.handleUpdate)
	r.Delete("/stages/{id}", s.handleDelete)
}

type listStagesResponse struct {
	Stages []*Stage `json:"stages"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	cerr.SetJSONResponse(r.Context(), listStagesResponse{Stages: s.catalog.List()})
}

type createStageRequest struct {
	Name      string `json:"name"`
	ColorName string `json:"colorName"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	created, err := s.catalog.Create(ctx, req.Name, req.ColorName)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.bus.PublishNew(eventbus.EventTypeStageCreated, created.ID, map[string]string{"key": created.Key})
	cerr.SetJSONResponse(ctx, created)
}

type updateStageRequest struct {
	Name      string `json:"name"`
	ColorName string `json:"colorName"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req updateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	updated, err := s.catalog.Rename(ctx, chi.URLParam(r, "id"), req.Name, req.ColorName)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.bus.PublishNew(eventbus.EventTypeStageUpdated, updated.ID, map[string]string{"key": updated.Key})
	cerr.SetJSONResponse(ctx, updated)
}

type deleteStageResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := s.remover.RemoveStage(ctx, id); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, deleteStageResponse{ID: id})
}
