package http

import (
	"errors"
	"net/http"

	"vibeledger/internal/core"
	"vibeledger/internal/log"
)

// manualFormData feeds the manual-entry panel template, optionally
// pre-filled from a voice or receipt suggestion.
type manualFormData struct {
	Kind              core.Kind
	Category          core.Category
	Amount            string
	Description       string
	Date              string
	Source            string
	IncomeCategories  []core.Category
	ExpenseCategories []core.Category
}

func newManualFormData() manualFormData {
	return manualFormData{
		Kind:              core.KindExpense,
		Date:              core.Today().String(),
		IncomeCategories:  core.IncomeCategories(),
		ExpenseCategories: core.ExpenseCategories(),
	}
}

func formDataFromSuggestion(sg core.Suggested) manualFormData {
	d := newManualFormData()
	d.Kind = sg.Kind
	d.Category = sg.Category
	d.Amount = sg.AmountText
	d.Description = sg.Description
	d.Source = sg.Source
	return d
}

// handleCreateTransaction validates and records a submission from the
// manual panel (including pre-filled voice/receipt submissions). Invalid
// input answers 422 with an inline error and leaves the panel open.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errorFragment(http.StatusBadRequest, "Invalid request").Write(w)
		return
	}

	sess := session(r.Context())

	cents, err := core.ParseDecimalToCents(r.Form.Get("amount"))
	if err != nil {
		errorFragment(http.StatusUnprocessableEntity, "Enter an amount greater than zero").Write(w)
		return
	}

	occurredOn := core.Today()
	if v := r.Form.Get("occurred_on"); v != "" {
		occurredOn, err = core.ParseDate(v)
		if err != nil {
			errorFragment(http.StatusUnprocessableEntity, "Enter a valid date").Write(w)
			return
		}
	}

	tx := core.Transaction{
		Owner:       sess.UserID,
		Kind:        core.Kind(r.Form.Get("kind")),
		Category:    core.Category(r.Form.Get("category")),
		Amount:      core.Money{Cents: cents},
		Description: sanitizeInput(r.Form.Get("description")),
		OccurredOn:  occurredOn,
	}

	saved, err := s.ledger.Record(r.Context(), tx)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidKind):
			errorFragment(http.StatusUnprocessableEntity, "Choose income or expense").Write(w)
		case errors.Is(err, core.ErrInvalidCategory), errors.Is(err, core.ErrCategoryMismatch):
			errorFragment(http.StatusUnprocessableEntity, "Choose a category that matches the type").Write(w)
		case errors.Is(err, core.ErrInvalidAmount):
			errorFragment(http.StatusUnprocessableEntity, "Enter an amount greater than zero").Write(w)
		case errors.Is(err, core.ErrEmptyDescription):
			errorFragment(http.StatusUnprocessableEntity, "Add a short description").Write(w)
		case errors.Is(err, core.ErrInvalidDate):
			errorFragment(http.StatusUnprocessableEntity, "Enter a valid date").Write(w)
		default:
			s.logger.ErrorContext(r.Context(), "record transaction failed",
				log.FieldOwner, sess.UserID, log.FieldError, err)
			errorFragment(http.StatusInternalServerError, "Could not save the transaction").Write(w)
		}
		return
	}

	// The books changed; the cached cards are stale.
	s.metricsCache.Delete(sess.UserID)

	// Close the panel the entry came from.
	s.panels.get(sessionToken(r)).Deactivate()

	NewResponse().
		TriggerTransactionCreated(saved.ID).
		TriggerFormReset().
		TriggerNotification("success", "Saved "+formatAmount(saved.Amount.Cents)).
		Write(w)
}
