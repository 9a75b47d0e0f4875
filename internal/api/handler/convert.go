package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"fxconvert/internal/auth"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/sirupsen/logrus"
)

const maxConvertBodyBytes = 1 << 10

type ConvertRequest struct {
	From   string  `json:"from" validate:"required,alpha,min=3,max=4" example:"USD"`
	To     string  `json:"to" validate:"required,alpha,min=3,max=4" example:"EUR"`
	Amount float64 `json:"amount" validate:"required,gt=0" example:"100"`
}

type ConvertResponse struct {
	ID        string    `json:"id"`
	From      string    `json:"from" example:"USD"`
	To        string    `json:"to" example:"EUR"`
	Amount    float64   `json:"amount" example:"100"`
	Result    float64   `json:"result" example:"92.34"`
	Rate      float64   `json:"rate" example:"0.9234"`
	CreatedAt time.Time `json:"created_at"`
}

// Convert godoc
// @Summary Convert an amount
// @Description Converts amount between two supported currencies at the current rate and records the conversion. Counts against the daily quota.
// @Tags Conversions
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body ConvertRequest true "Conversion request"
// @Success 200 {object} ConvertResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 429 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /convert [post]
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxConvertBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req ConvertRequest
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.From = strings.ToUpper(strings.TrimSpace(req.From))
	req.To = strings.ToUpper(strings.TrimSpace(req.To))

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	conversion, err := h.converter.Convert(r.Context(), req.From, req.To, req.Amount, identity)
	if err != nil {
		writeDomainError(w, err, logrus.WithFields(logrus.Fields{"handler": "Convert", "from": req.From, "to": req.To}))
		return
	}

	writeJSON(w, http.StatusOK, ConvertResponse{
		ID:        conversion.ID.String(),
		From:      conversion.From,
		To:        conversion.To,
		Amount:    conversion.Amount,
		Result:    conversion.Result,
		Rate:      conversion.Rate,
		CreatedAt: conversion.CreatedAt,
	})
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid request"
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}
