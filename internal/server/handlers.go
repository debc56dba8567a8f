package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/theirongolddev/pocket/internal/ledger"
	"github.com/theirongolddev/pocket/internal/log"
)

const maxBodyBytes = 64 << 10

// LedgerView is the full ledger state served at /v1/ledger.
type LedgerView struct {
	Summary
	Draft   ledger.Draft   `json:"draft"`
	History []ledger.Entry `json:"history"`
}

// CommitResult reports the outcome of a draft commit.
type CommitResult struct {
	Committed bool          `json:"committed"`
	Entry     *ledger.Entry `json:"entry,omitempty"`
	Summary   Summary       `json:"summary"`
}

// LockResult reports the edit lock after a toggle.
type LockResult struct {
	Editable bool   `json:"editable"`
	State    string `json:"state"`
}

type valueRequest struct {
	Value *ledger.Text `json:"value"`
}

type draftRequest struct {
	Amount      *string `json:"amount"`
	Description *string `json:"description"`
}

type expenseRequest struct {
	Amount      ledger.Text `json:"amount"`
	Description ledger.Text `json:"description"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) handleLedger(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	view := LedgerView{
		Summary: s.summaryLocked(),
		Draft:   s.ledger.Draft(),
		History: s.ledger.EntriesDescending(),
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, view)
}

func (s *Service) handleSetIncome(w http.ResponseWriter, r *http.Request) {
	s.setFixed(w, r, EventIncome, (*ledger.Ledger).SetFixedIncome)
}

func (s *Service) handleSetFixedExpenses(w http.ResponseWriter, r *http.Request) {
	s.setFixed(w, r, EventFixedExpenses, (*ledger.Ledger).SetFixedExpenses)
}

type fixedSetter func(*ledger.Ledger, context.Context, string) error

// setFixed applies a change to one of the fixed values, refusing it while
// the edit lock is engaged.
func (s *Service) setFixed(w http.ResponseWriter, r *http.Request, eventType string, set fixedSetter) {
	var req valueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, errors.New(`missing "value"`))
		return
	}

	s.mu.Lock()
	if !s.lock.Editable() {
		s.mu.Unlock()
		writeError(w, http.StatusLocked, errors.New("fixed values are locked"))
		return
	}
	err := set(s.ledger, r.Context(), string(*req.Value))
	s.recordLocked(err)
	ev := s.newEventLocked(eventType, nil)
	s.publishLocked(ev)
	s.mu.Unlock()

	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, ev.Summary)
}

func (s *Service) handleGetDraft(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	draft := s.ledger.Draft()
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, draft)
}

func (s *Service) handlePatchDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	if req.Amount != nil {
		s.ledger.UpdateDraft(ledger.FieldAmount, *req.Amount)
	}
	if req.Description != nil {
		s.ledger.UpdateDraft(ledger.FieldDescription, *req.Description)
	}
	draft := s.ledger.Draft()
	s.publishLocked(s.newEventLocked(EventDraft, nil))
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, draft)
}

func (s *Service) handleCommitDraft(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	res, err := s.commitLocked(r.Context())
	s.mu.Unlock()

	s.writeCommit(w, res, err)
}

// handleAddExpense fills the draft from the request and commits it in one
// step. Both fields are required; the shared draft is only touched when the
// request is complete.
func (s *Service) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Amount == "" || req.Description == "" {
		writeError(w, http.StatusUnprocessableEntity, errors.New("amount and description are required"))
		return
	}

	s.mu.Lock()
	s.ledger.UpdateDraft(ledger.FieldAmount, string(req.Amount))
	s.ledger.UpdateDraft(ledger.FieldDescription, string(req.Description))
	res, err := s.commitLocked(r.Context())
	s.mu.Unlock()

	s.writeCommit(w, res, err)
}

// commitLocked must be called with s.mu held for writing.
func (s *Service) commitLocked(ctx context.Context) (CommitResult, error) {
	entry, ok, err := s.ledger.CommitDraft(ctx)
	if !ok {
		return CommitResult{Summary: s.summaryLocked()}, nil
	}
	s.recordLocked(err)
	ev := s.newEventLocked(EventExpenseAdded, &entry)
	s.publishLocked(ev)
	return CommitResult{Committed: true, Entry: &entry, Summary: ev.Summary}, err
}

func (s *Service) writeCommit(w http.ResponseWriter, res CommitResult, err error) {
	switch {
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
	case res.Committed:
		writeJSON(w, http.StatusCreated, res)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Service) handleToggleLock(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	state := s.lock.Toggle()
	s.publishLocked(s.newEventLocked(EventLockToggled, nil))
	s.mu.Unlock()

	s.logger.Info("edit lock toggled", log.FieldOperation, log.OpToggle, log.FieldEditable, bool(state))
	writeJSON(w, http.StatusOK, LockResult{Editable: bool(state), State: state.String()})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return fmt.Errorf("decoding request: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
