package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"ledger/internal/core"
)

// transactionRequest is the wire shape for create and update bodies.
type transactionRequest struct {
	Type        core.TransactionType `json:"type"`
	Category    int64                `json:"category"`
	Amount      int64                `json:"amount"`
	Date        string               `json:"date"`
	Description string               `json:"description"`
}

func (req transactionRequest) toTransaction() (core.Transaction, error) {
	t := core.Transaction{
		Type:        req.Type,
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if req.Date != "" {
		d, err := core.ParseDate(req.Date)
		if err != nil {
			return core.Transaction{}, core.ErrInvalidDate
		}
		t.Date = d
	}
	return t, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	t, err := req.toTransaction()
	if err != nil {
		respondMessage(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	created, err := s.ledger.Create(r.Context(), t)
	if err != nil {
		if core.IsValidationError(err) {
			respondMessage(w, http.StatusBadRequest, msgInvalidRequest)
			return
		}
		slog.ErrorContext(r.Context(), "Create transaction failed", "error", err)
		respondServerError(w, err)
		return
	}

	respondData(w, http.StatusCreated, msgCreated, created)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.ledger.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "error", err)
		respondServerError(w, err)
		return
	}
	if transactions == nil {
		transactions = []core.Transaction{}
	}
	respondData(w, http.StatusOK, msgSuccess, transactions)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondMessage(w, http.StatusNotFound, fmt.Sprintf("Transaction with ID %s not found", raw))
		return
	}

	t, err := s.ledger.GetByID(r.Context(), id)
	if err != nil {
		if core.IsNotFound(err) {
			respondMessage(w, http.StatusNotFound, fmt.Sprintf("Transaction with ID %d not found", id))
			return
		}
		slog.ErrorContext(r.Context(), "Get transaction failed", "id", id, "error", err)
		respondServerError(w, err)
		return
	}

	respondData(w, http.StatusOK, msgSuccess, t)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondMessage(w, http.StatusNotFound, msgUpdateNotFound)
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	t, err := req.toTransaction()
	if err != nil {
		respondMessage(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	updated, err := s.ledger.Update(r.Context(), id, t)
	if err != nil {
		switch {
		case core.IsValidationError(err):
			respondMessage(w, http.StatusBadRequest, msgInvalidRequest)
		case core.IsNotFound(err):
			respondMessage(w, http.StatusNotFound, msgUpdateNotFound)
		default:
			slog.ErrorContext(r.Context(), "Update transaction failed", "id", id, "error", err)
			respondServerError(w, err)
		}
		return
	}

	respondData(w, http.StatusOK, msgUpdated, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondMessage(w, http.StatusNotFound, msgDeleteNotFound)
		return
	}

	if err := s.ledger.Delete(r.Context(), id); err != nil {
		if core.IsNotFound(err) {
			respondMessage(w, http.StatusNotFound, msgDeleteNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "Delete transaction failed", "id", id, "error", err)
		respondServerError(w, err)
		return
	}

	respondData(w, http.StatusOK, msgDeleted, map[string]int64{"id": id})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.summary.Summarize(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary failed", "error", err)
		respondServerError(w, err)
		return
	}
	respondData(w, http.StatusOK, msgSuccess, summary)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	respondMessage(w, http.StatusNotFound, msgNotFoundRoute)
}
