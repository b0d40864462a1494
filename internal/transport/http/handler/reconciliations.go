package handler

import (
	"net/http"
	"sync"

	"github.com/sjpiano/paytrack/internal/application/reconcile"
	"github.com/sjpiano/paytrack/internal/domain"
)

// ReconciliationHandler triggers runs and serves the most recent report.
// Reports are held in memory only; the caller owns any longer retention.
type ReconciliationHandler struct {
	svc reconcile.Service

	mu   sync.Mutex
	last *domain.Report
}

func NewReconciliationHandler(svc reconcile.Service) *ReconciliationHandler {
	return &ReconciliationHandler{svc: svc}
}

// Run executes one reconciliation synchronously. The run serializes on the
// handler lock so two triggers cannot interleave within this process.
func (h *ReconciliationHandler) Run(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	report, err := h.svc.Run(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	h.last = report
	writeJSON(w, http.StatusOK, report)
}

func (h *ReconciliationHandler) Latest(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.last == nil {
		writeError(w, http.StatusNotFound, "no reconciliation has run yet")
		return
	}
	writeJSON(w, http.StatusOK, h.last)
}
