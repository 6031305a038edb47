package orders

import "time"

// Order is one accepted submission. Once its status leaves pending_sync for
// a non-cancelled terminal state, its lines are immutable quota inputs.
type Order struct {
	ID             string
	CampaignID     int64
	CustomerNumber string
	Country        string
	Status         Status
	CreatedAt      time.Time
}

type Line struct {
	ID          int64
	OrderID     string
	ItemID      int64
	ProductCode string
	Quantity    int
}

// ExportOrder is the order joined with the campaign fields the ERP encoder
// needs.
type ExportOrder struct {
	Order
	CampaignName  string
	CampaignToken string
	OrderType     string
	DeliveryDate  *time.Time
	Lines         []Line
}
