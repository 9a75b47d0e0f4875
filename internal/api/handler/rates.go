package handler

import (
	"fxconvert/internal/domain"
	"net/http"

	"github.com/sirupsen/logrus"
)

type GetRatesResponse struct {
	Base  string             `json:"base" example:"USD"`
	Rates map[string]float64 `json:"rates"`
}

// GetRates godoc
// @Summary Current exchange rates
// @Description Rates of every supported currency relative to the base currency. Counts against the daily quota.
// @Tags Rates
// @Produce json
// @Security Bearer
// @Success 200 {object} GetRatesResponse
// @Failure 401 {object} errorResponse
// @Failure 429 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /rates [get]
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.rates.GetRates(r.Context())
	if err != nil {
		writeDomainError(w, err, logrus.WithField("handler", "GetRates"))
		return
	}

	writeJSON(w, http.StatusOK, GetRatesResponse{
		Base:  domain.BaseCurrency,
		Rates: rates,
	})
}
