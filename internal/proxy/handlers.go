// Package proxy exposes the MOEX quote endpoints consumed by the browser
// frontend. It is a pure pass-through translator with no resolver or local
// cache; the only caching is the CDN directives on the response.
package proxy

import (
	"encoding/json"
	"net/http"
	"time"

	"finnow/internal/marketdata"

	"github.com/rs/zerolog"
)

// cacheControl matches the original CDN policy: five minutes shared cache
// plus a one minute stale-while-revalidate window.
const cacheControl = "public, s-maxage=300, stale-while-revalidate=60"

// Handler handles the MOEX proxy HTTP requests.
type Handler struct {
	moex *marketdata.MOEXClient
	log  zerolog.Logger
}

// NewHandler creates a proxy handler around a MOEX client.
func NewHandler(moex *marketdata.MOEXClient, log zerolog.Logger) *Handler {
	return &Handler{
		moex: moex,
		log:  log.With().Str("handler", "moex-proxy").Logger(),
	}
}

// envelope is the response shape of both endpoints.
type envelope struct {
	Success   bool        `json:"success"`
	Timestamp string      `json:"timestamp,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// HandleStocks handles GET /api/moex/stocks.
func (h *Handler) HandleStocks(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.moex.FetchStocks(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to fetch MOEX stocks")
		h.writeError(w, err)
		return
	}
	h.writeData(w, stocks)
}

// HandleBonds handles GET /api/moex/bonds.
func (h *Handler) HandleBonds(w http.ResponseWriter, r *http.Request) {
	bonds, err := h.moex.FetchBonds(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to fetch MOEX bonds")
		h.writeError(w, err)
		return
	}
	h.writeData(w, bonds)
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

func (h *Handler) writeData(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(envelope{
		Success:   true,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(envelope{
		Success: false,
		Error:   err.Error(),
	})
}
