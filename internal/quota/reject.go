package quota

import "fmt"

type RejectReason string

const (
	ReasonNotOrderable  RejectReason = "not_orderable"
	ReasonQuotaExceeded RejectReason = "quota_exceeded"
)

// Rejected is returned when a requested quantity cannot be granted. It
// carries the current ceiling so callers can clamp and retry.
type Rejected struct {
	Reason       RejectReason
	ProductCode  string
	MaxOrderable Limit
}

func (e *Rejected) Error() string {
	if n, ok := e.MaxOrderable.Value(); ok {
		return fmt.Sprintf("%s: %s (max orderable %d)", e.ProductCode, e.Reason, n)
	}
	return fmt.Sprintf("%s: %s", e.ProductCode, e.Reason)
}
