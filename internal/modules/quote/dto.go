package quote

import (
	"encoding/json"
)

type CreateQuoteRequest struct {
	MoverID        *int64          `json:"mover_id,omitempty"`
	FromAddress    string          `json:"from_address" binding:"required"`
	ToAddress      string          `json:"to_address" binding:"required"`
	ServicePayload json.RawMessage `json:"service_payload,omitempty"`
}

type PriceRequest struct {
	PriceCents int64 `json:"price_cents" binding:"required,gt=0"`
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
