package http

import (
	"net/http"

	"tracker/internal/core"
	"tracker/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := s.svc.Transactions.List(r.Context())
	if err != nil {
		respondError(w, r, err, "Failed to load transactions")
		return
	}
	if txns == nil {
		txns = []core.Transaction{}
	}
	NewJSONResponse().Body(txns).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err, "")
		return
	}
	t, err := s.svc.Transactions.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "Failed to load transaction")
		return
	}
	NewJSONResponse().Body(t).Write(w)
}

// handleCreateTransaction answers 201 even when the budget is exceeded; the
// overage travels as an advisory warning.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := ParseTransaction(r)
	if err != nil {
		respondError(w, r, err, "")
		return
	}

	res, err := s.svc.Transactions.Create(r.Context(), t)
	if err != nil {
		respondError(w, r, err, "Failed to add transaction")
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+itoa(res.Transaction.ID)).
		Body(MessageResponse{Message: "Transaction added", ID: res.Transaction.ID, Warning: res.Warning}).
		Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err, "")
		return
	}
	t, err := ParseTransaction(r)
	if err != nil {
		respondError(w, r, err, "")
		return
	}
	t.ID = id

	res, err := s.svc.Transactions.Update(r.Context(), t)
	if err != nil {
		respondError(w, r, err, "Failed to update transaction")
		return
	}
	NewJSONResponse().Message("Transaction updated", res.Warning).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err, "")
		return
	}
	if err := s.svc.Transactions.Delete(r.Context(), id); err != nil {
		respondError(w, r, err, "Failed to delete transaction")
		return
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Transaction removed", log.FieldTxID, id)
	NewJSONResponse().Message("Transaction deleted", "").Write(w)
}
