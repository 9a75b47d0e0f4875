package handler

import (
	"fxconvert/internal/auth"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type ConversionView struct {
	ID        string    `json:"id"`
	From      string    `json:"from" example:"USD"`
	To        string    `json:"to" example:"EUR"`
	Amount    float64   `json:"amount" example:"100"`
	Result    float64   `json:"result" example:"92.34"`
	Rate      float64   `json:"rate" example:"0.9234"`
	CreatedAt time.Time `json:"created_at"`
}

type ListConversionsResponse struct {
	Conversions []ConversionView `json:"conversions"`
}

// ListConversions godoc
// @Summary Conversion history
// @Description The caller's most recent conversions, newest first. Does not count against the quota.
// @Tags Conversions
// @Produce json
// @Security Bearer
// @Param limit query int false "How many conversions to return (1-100)" default(20)
// @Success 200 {object} ListConversionsResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /conversions [get]
func (h *Handler) ListConversions(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and 100")
			return
		}
		limit = n
	}

	conversions, err := h.converter.History(r.Context(), identity, limit)
	if err != nil {
		msg := "ups, couldn't load conversions this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "ListConversions", "identity": identity}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	res := ListConversionsResponse{Conversions: make([]ConversionView, 0, len(conversions))}
	for _, c := range conversions {
		res.Conversions = append(res.Conversions, ConversionView{
			ID:        c.ID.String(),
			From:      c.From,
			To:        c.To,
			Amount:    c.Amount,
			Result:    c.Result,
			Rate:      c.Rate,
			CreatedAt: c.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, res)
}
