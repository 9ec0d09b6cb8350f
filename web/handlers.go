package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

const (
	defaultWindowDays = 30
	maxWindowDays     = 90
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, errorBody{Error: fmt.Sprintf(format, args...)})
}

// parseDays validates the days query parameter. Absent means the default
// 30 day window.
func parseDays(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return defaultWindowDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("days must be an integer, got %q", raw)
	}
	if days < 1 || days > maxWindowDays {
		return 0, fmt.Errorf("days must be between 1 and %d, got %d", maxWindowDays, days)
	}
	return days, nil
}

func parseBool(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	days, err := parseDays(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	dash, err := h.dashboard.Dashboard(r.Context(), days)
	if err != nil {
		h.logger.Error().Err(err).Int("days", days).Msg("dashboard assembly failed")
		writeError(w, http.StatusInternalServerError, "dashboard unavailable")
		return
	}

	writeJSON(w, http.StatusOK, dash)
}

func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	criticalOnly := parseBool(r, "critical_only")

	resp, err := h.dashboard.Alerts(r.Context(), criticalOnly)
	if err != nil {
		h.logger.Error().Err(err).Msg("alert evaluation failed")
		writeError(w, http.StatusInternalServerError, "alerts unavailable")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	days, err := parseDays(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		writeError(w, http.StatusBadRequest, "format must be json or csv, got %q", format)
		return
	}

	dash, err := h.dashboard.Dashboard(r.Context(), days)
	if err != nil {
		h.logger.Error().Err(err).Int("days", days).Msg("export assembly failed")
		writeError(w, http.StatusInternalServerError, "export unavailable")
		return
	}

	if format == "json" {
		writeJSON(w, http.StatusOK, dash)
		return
	}

	filename := fmt.Sprintf("billing_report_%s.csv", dash.DateRange.To)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	if err := writeCSV(w, dash); err != nil {
		h.logger.Error().Err(err).Msg("csv export write failed")
	}
}
