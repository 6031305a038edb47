package campaign

import "time"

type Country string

const (
	CountryBE   Country = "BE"
	CountryLU   Country = "LU"
	CountryBoth Country = "BOTH"
)

// Admits reports whether a customer of the given country may enter.
func (c Country) Admits(country string) bool {
	return c == CountryBoth || string(c) == country
}

type AssignmentMode string

const (
	ModeAutomatic AssignmentMode = "automatic"
	ModeManual    AssignmentMode = "manual"
	ModeProtected AssignmentMode = "protected"
)

type Campaign struct {
	ID            int64
	Token         string
	Name          string
	Country       Country
	StartDate     time.Time
	EndDate       time.Time
	Active        bool
	Mode          AssignmentMode
	OrderPassword string // non-empty iff Mode == protected
	OrderType     string // V | W
	DeliveryDate  *time.Time
}

// Deferred reports whether orders for this campaign carry a delivery date.
func (c *Campaign) Deferred() bool { return c.DeliveryDate != nil }

// Item is a promotional item orderable within one campaign. A nil limit
// means unbounded.
type Item struct {
	ID             int64
	CampaignID     int64
	Code           string
	Label          string
	MaxTotal       *int
	MaxPerCustomer *int
	Active         bool
}
