package handler

import (
	"fxconvert/internal/domain"
	"net/http"
)

type GetCurrenciesResponse struct {
	Base  string   `json:"base" example:"USD"`
	Codes []string `json:"codes" example:"EUR,GBP,USD"`
}

// GetCurrencies godoc
// @Summary List supported currencies
// @Description Retrieve all currency codes accepted for conversion
// @Tags Currencies
// @Produce json
// @Success 200 {object} GetCurrenciesResponse
// @Router /currencies [get]
func (h *Handler) GetCurrencies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, GetCurrenciesResponse{
		Base:  domain.BaseCurrency,
		Codes: h.rates.Supported(),
	})
}
