package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderFinalized  = "OrderFinalized"
	EventOrderSynced     = "OrderSynced"
	EventOrderSyncFailed = "OrderSyncFailed"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type LinePayload struct {
	ProductCode string `json:"product_code"`
	Quantity    int    `json:"quantity"`
}

type OrderFinalizedPayload struct {
	OrderID        string        `json:"order_id"`
	CampaignToken  string        `json:"campaign_token"`
	CustomerNumber string        `json:"customer_number"`
	Country        string        `json:"country"`
	Lines          []LinePayload `json:"lines"`
}

type OrderSyncedPayload struct {
	OrderID string `json:"order_id"`
	File    string `json:"file"`
}

type OrderSyncFailedPayload struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}
