package http

import (
	"net/http"

	"vibeledger/internal/core"
	"vibeledger/internal/ledger"
	"vibeledger/internal/log"
)

// render executes a template and reports failures as 500s. Partial
// handlers call it last so nothing else writes after an error.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "template execution failed",
			"template", name, log.FieldError, err)
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

type pageData struct {
	DisplayName string
	Email       string
	ActivePanel core.Panel
}

func (s *Server) pageData(r *http.Request) pageData {
	sess := session(r.Context())
	vs := s.panels.get(sessionToken(r))
	return pageData{
		DisplayName: sess.DisplayName,
		Email:       sess.Email,
		ActivePanel: vs.ActivePanel(),
	}
}

// handleDashboard renders the signed-in home: metric cards, quick-action
// buttons and the recent transaction list, each refreshed via partials.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "dashboard_page", s.pageData(r))
}

func (s *Server) handleTransactionsPage(w http.ResponseWriter, r *http.Request) {
	sess := session(r.Context())
	records, err := s.ledger.List(r.Context(), sess.UserID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list transactions failed",
			log.FieldOwner, sess.UserID, log.FieldError, err)
		http.Error(w, "could not load transactions", http.StatusInternalServerError)
		return
	}

	data := struct {
		pageData
		Transactions []core.Transaction
	}{s.pageData(r), records}
	s.render(w, r, "transactions_page", data)
}

func (s *Server) handleReportsPage(w http.ResponseWriter, r *http.Request) {
	sess := session(r.Context())
	ctx := r.Context()

	income, err := s.ledger.CategoryBreakdown(ctx, sess.UserID, core.KindIncome)
	if err != nil {
		http.Error(w, "could not load report", http.StatusInternalServerError)
		return
	}
	expense, err := s.ledger.CategoryBreakdown(ctx, sess.UserID, core.KindExpense)
	if err != nil {
		http.Error(w, "could not load report", http.StatusInternalServerError)
		return
	}
	metrics, err := s.ownerMetrics(r)
	if err != nil {
		http.Error(w, "could not load report", http.StatusInternalServerError)
		return
	}

	data := struct {
		pageData
		Income  []core.CategoryAmount
		Expense []core.CategoryAmount
		Totals  core.Summary
	}{s.pageData(r), income, expense, metrics.AllTime}
	s.render(w, r, "reports_page", data)
}

func (s *Server) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	sess := session(r.Context())
	count, err := s.ledger.Count(r.Context(), sess.UserID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "count transactions failed", log.FieldError, err)
	}
	data := struct {
		pageData
		Count int64
	}{s.pageData(r), count}
	s.render(w, r, "settings_page", data)
}

// ownerMetrics serves metrics from the cache, recomputing on a miss.
func (s *Server) ownerMetrics(r *http.Request) (ledger.Metrics, error) {
	sess := session(r.Context())
	if m, ok := s.metricsCache.Get(sess.UserID); ok {
		return m, nil
	}
	m, err := s.ledger.Metrics(r.Context(), sess.UserID)
	if err != nil {
		return ledger.Metrics{}, err
	}
	s.metricsCache.Set(sess.UserID, m)
	return m, nil
}

// handleMetricsPartial renders the dashboard metric cards.
func (s *Server) handleMetricsPartial(w http.ResponseWriter, r *http.Request) {
	m, err := s.ownerMetrics(r)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "metrics failed", log.FieldError, err)
		errorFragment(http.StatusInternalServerError, "Could not load metrics").Write(w)
		return
	}
	s.render(w, r, "metrics_cards", m)
}

// handleRecentPartial renders the latest transactions.
func (s *Server) handleRecentPartial(w http.ResponseWriter, r *http.Request) {
	sess := session(r.Context())
	records, err := s.ledger.Recent(r.Context(), sess.UserID, 10)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "recent transactions failed", log.FieldError, err)
		errorFragment(http.StatusInternalServerError, "Could not load transactions").Write(w)
		return
	}
	s.render(w, r, "recent_list", struct{ Transactions []core.Transaction }{records})
}

// handlePanelActivate opens one of the entry panels, closing whichever
// was open before.
func (s *Server) handlePanelActivate(w http.ResponseWriter, r *http.Request) {
	panel := core.Panel(r.FormValue("panel"))
	vs := s.panels.get(sessionToken(r))
	vs.Activate(panel)
	s.renderPanel(w, r, vs.ActivePanel())
}

// handlePanelClose dismisses the open panel. Nothing typed into it is
// kept.
func (s *Server) handlePanelClose(w http.ResponseWriter, r *http.Request) {
	vs := s.panels.get(sessionToken(r))
	vs.Deactivate()
	s.renderPanel(w, r, vs.ActivePanel())
}

func (s *Server) renderPanel(w http.ResponseWriter, r *http.Request, p core.Panel) {
	switch p {
	case core.PanelManual:
		s.render(w, r, "panel_manual", newManualFormData())
	case core.PanelVoice:
		s.render(w, r, "panel_voice", nil)
	case core.PanelReceipt:
		s.render(w, r, "panel_receipt", nil)
	default:
		s.render(w, r, "panel_closed", nil)
	}
}
