package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"tracker/internal/core"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.svc.Budgets.List(r.Context(), mux.Vars(r)["month"])
	if err != nil {
		respondError(w, r, err, "Failed to load budgets")
		return
	}
	if budgets == nil {
		budgets = []core.Budget{}
	}
	NewJSONResponse().Body(budgets).Write(w)
}

func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.svc.Budgets.Progress(r.Context(), mux.Vars(r)["month"])
	if err != nil {
		respondError(w, r, err, "Failed to load budget progress")
		return
	}
	if progress == nil {
		progress = []core.BudgetStatus{}
	}
	NewJSONResponse().Body(progress).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	b, err := ParseBudget(r)
	if err != nil {
		respondError(w, r, err, "")
		return
	}
	saved, err := s.svc.Budgets.Create(r.Context(), b)
	if err != nil {
		respondError(w, r, err, "Failed to save budget")
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Body(MessageResponse{Message: "Budget saved", ID: saved.ID}).
		Write(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err, "")
		return
	}
	b, err := ParseBudget(r)
	if err != nil {
		respondError(w, r, err, "")
		return
	}
	b.ID = id
	if _, err := s.svc.Budgets.Update(r.Context(), b); err != nil {
		respondError(w, r, err, "Failed to update budget")
		return
	}
	NewJSONResponse().Message("Budget updated", "").Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err, "")
		return
	}
	if err := s.svc.Budgets.Delete(r.Context(), id); err != nil {
		respondError(w, r, err, "Failed to delete budget")
		return
	}
	NewJSONResponse().Message("Budget deleted", "").Write(w)
}
