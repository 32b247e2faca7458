package board

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kshimizu/taskboard/internal/stage"
	"github.com/kshimizu/taskboard/internal/workitem"
	"github.com/kshimizu/taskboard/pkg/cerr"
)

type Server struct {
	catalog     *stage.Catalog
	index       *workitem.Index
	coordinator *Coordinator
}

func NewServer(catalog *stage.Catalog, index *workitem.Index, coordinator *Coordinator) *Server {
	return &Server{
		catalog:     catalog,
		index:       index,
		coordinator: coordinator,
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/board", s.handleSnapshot)
	r.Get("/board/stats", s.handleStats)
	r.Post("/board/moves", s.handlePropose)
	r.Post("/board/moves/{token}/confirm", s.handleConfirm)
	r.Post("/board/moves/{token}/cancel", s.handleCancel)
}

// Column is one stage of the board snapshot with its items and totals.
type Column struct {
	Stage     *stage.Stage         `json:"stage"`
	Items     []*workitem.WorkItem `json:"tasks"`
	Aggregate Aggregate            `json:"aggregate"`
}

type snapshotResponse struct {
	Columns []Column `json:"columns"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sortBy := workitem.SortByCreatedAt
	if r.URL.Query().Get("sort") == "due" {
		sortBy = workitem.SortByDueDate
	}

	stages := s.catalog.List()
	columns := make([]Column, len(stages))
	for i, st := range stages {
		items := s.index.ItemsIn(st.Key, sortBy)
		if items == nil {
			items = []*workitem.WorkItem{}
		}
		columns[i] = Column{
			Stage:     st,
			Items:     items,
			Aggregate: ComputeAggregate(s.index, st.Key),
		}
	}
	cerr.SetJSONResponse(ctx, snapshotResponse{Columns: columns})
}

type statsResponse struct {
	Aggregates []Aggregate `json:"aggregates"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	cerr.SetJSONResponse(r.Context(), statsResponse{
		Aggregates: ComputeAggregates(s.index, s.catalog),
	})
}

type proposeMoveRequest struct {
	TaskID     string `json:"taskId"`
	ToStageKey string `json:"toStageKey"`
}

func (s *Server) handlePropose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req proposeMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	move, err := s.coordinator.ProposeMove(ctx, req.TaskID, req.ToStageKey)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, move)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := s.coordinator.ConfirmMove(ctx, chi.URLParam(r, "token"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, result)
}

type cancelMoveResponse struct {
	Token string    `json:"token"`
	State MoveState `json:"state"`
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := chi.URLParam(r, "token")
	if err := s.coordinator.CancelMove(ctx, token); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, cancelMoveResponse{Token: token, State: MoveStateCancelled})
}
