package domain

import (
	"time"

	"github.com/google/uuid"
)

type Conversion struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Amount    float64   `json:"amount"`
	Result    float64   `json:"result"`
	Rate      float64   `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
}
