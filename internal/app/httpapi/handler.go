// Package httpapi exposes the tipping platform's REST surface.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	app "github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app"
	tippingdomain "github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/domain/tipping"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/metrics"
)

// Config controls the HTTP surface.
type Config struct {
	// AuthSecret signs the bearer tokens carrying caller principals.
	AuthSecret []byte
	// RequestsPerSecond and Burst bound each principal's request rate.
	RequestsPerSecond int
	Burst             int
}

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
}

// NewHandler returns a router exposing the core REST API.
func NewHandler(application *app.Application, cfg Config) http.Handler {
	h := &handler{app: application}

	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 50
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 100
	}

	r := mux.NewRouter()
	r.Use(metrics.InstrumentHandler)
	r.Use(BearerAuth(cfg.AuthSecret))
	r.Use(newRateLimiter(cfg.RequestsPerSecond, cfg.Burst).handler)

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/tips", h.postTip).Methods(http.MethodPost)
	r.HandleFunc("/tips/validate", h.validateAmount).Methods(http.MethodGet)

	r.HandleFunc("/accounts/{account}/stats", h.getStats).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{account}/stats/sent", h.getTotalSent).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{account}/stats/received", h.getTotalReceived).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{account}/stats/received/preview", h.previewReceived).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{account}/reward-points", h.postRewardPoints).Methods(http.MethodPost)
	r.HandleFunc("/accounts/{account}/reward-points/preview", h.previewRewardPoints).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{account}/identity", h.getIdentity).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{account}/identity", h.putIdentity).Methods(http.MethodPut)
	r.HandleFunc("/accounts/{account}/tips", h.listTips).Methods(http.MethodGet)

	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) postTip(w http.ResponseWriter, r *http.Request) {
	caller := CallerFromContext(r.Context())
	if caller == "" {
		writeErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req tippingdomain.TipRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.app.Tipping.Tip(r.Context(), caller, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (h *handler) validateAmount(w http.ResponseWriter, r *http.Request) {
	amount, ok := amountParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": h.app.Tipping.ValidTipAmount(amount)})
}

func (h *handler) getStats(w http.ResponseWriter, r *http.Request) {
	rec, err := h.app.Tipping.Stats(r.Context(), mux.Vars(r)["account"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *handler) getTotalSent(w http.ResponseWriter, r *http.Request) {
	total, err := h.app.Tipping.TotalSent(r.Context(), mux.Vars(r)["account"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"total_sent": total})
}

func (h *handler) getTotalReceived(w http.ResponseWriter, r *http.Request) {
	total, err := h.app.Tipping.TotalReceived(r.Context(), mux.Vars(r)["account"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"total_received": total})
}

func (h *handler) previewReceived(w http.ResponseWriter, r *http.Request) {
	amount, ok := amountParam(w, r)
	if !ok {
		return
	}
	total, err := h.app.Tipping.PreviewReceived(r.Context(), mux.Vars(r)["account"], amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"total_received": total})
}

func (h *handler) postRewardPoints(w http.ResponseWriter, r *http.Request) {
	caller := CallerFromContext(r.Context())
	if caller == "" {
		writeErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload struct {
		Points uint64 `json:"points"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	target := mux.Vars(r)["account"]
	if err := h.app.Tipping.AddRewardPoints(r.Context(), caller, target, payload.Points); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *handler) previewRewardPoints(w http.ResponseWriter, r *http.Request) {
	amount, ok := amountParam(w, r)
	if !ok {
		return
	}
	points, err := h.app.Tipping.PreviewRewardPoints(r.Context(), mux.Vars(r)["account"], amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"reward_points": points})
}

func (h *handler) getIdentity(w http.ResponseWriter, r *http.Request) {
	id, ok, err := h.app.Identity.Get(r.Context(), mux.Vars(r)["account"])
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeErrorMessage(w, http.StatusNotFound, "no identity registered")
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (h *handler) putIdentity(w http.ResponseWriter, r *http.Request) {
	caller := CallerFromContext(r.Context())
	if caller == "" {
		writeErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload struct {
		Username string `json:"username"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.app.Identity.Set(r.Context(), caller, mux.Vars(r)["account"], payload.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (h *handler) listTips(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeErrorMessage(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	receipts, err := h.app.Tipping.History(r.Context(), mux.Vars(r)["account"], limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if receipts == nil {
		receipts = []tippingdomain.Receipt{}
	}
	writeJSON(w, http.StatusOK, receipts)
}

func amountParam(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := r.URL.Query().Get("amount")
	amount, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid amount")
		return 0, false
	}
	return amount, true
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps domain failures to HTTP statuses, carrying the numeric
// failure code when one applies.
func writeError(w http.ResponseWriter, err error) {
	var terr *tippingdomain.Error
	if errors.As(err, &terr) {
		writeJSON(w, statusFor(terr), map[string]interface{}{
			"error": err.Error(),
			"code":  terr.Code,
		})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func statusFor(err *tippingdomain.Error) int {
	switch err {
	case tippingdomain.ErrUnauthorized:
		return http.StatusForbidden
	case tippingdomain.ErrUsernameTaken:
		return http.StatusConflict
	case tippingdomain.ErrTransferFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
