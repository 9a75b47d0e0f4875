package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fxconvert/internal/domain"
	"net/http"
	"time"

	"github.com/go-playground/validator"
	"github.com/sirupsen/logrus"
)

type Converter interface {
	Convert(ctx context.Context, from, to string, amount float64, identity string) (domain.Conversion, error)
	History(ctx context.Context, identity string, limit int) ([]domain.Conversion, error)
}

type RateReader interface {
	GetRates(ctx context.Context) (domain.Rates, error)
	Supported() []string
}

type Handler struct {
	converter Converter
	rates     RateReader
	validate  *validator.Validate
	now       func() time.Time
}

func NewHandler(converter Converter, rates RateReader) *Handler {
	return &Handler{converter: converter, rates: rates, validate: validator.New(), now: time.Now}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string) {
	writeJSON(w, statusCode, errorResponse{
		Error: errorMsg,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// writeDomainError maps core error kinds to HTTP statuses. Client-side kinds keep their
// message, server-side ones are logged and replaced with a generic one.
func writeDomainError(w http.ResponseWriter, err error, log *logrus.Entry) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedCurrency), errors.Is(err, domain.ErrRateUnavailable):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrQuotaExceeded):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrRatesUnavailable):
		writeError(w, http.StatusInternalServerError, "exchange rates are temporarily unavailable")
	case errors.Is(err, domain.ErrPersistenceFailed):
		writeError(w, http.StatusInternalServerError, domain.ErrPersistenceFailed.Error())
	default:
		msg := "ups, something went wrong this time"
		log.WithError(err).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
	}
}
