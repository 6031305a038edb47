package campaign

import "time"

// AccessStatus is the outcome of an admission evaluation.
type AccessStatus string

const (
	StatusActive          AccessStatus = "active"
	StatusNotFound        AccessStatus = "not_found"
	StatusUpcoming        AccessStatus = "upcoming"
	StatusEnded           AccessStatus = "ended"
	StatusInactive        AccessStatus = "inactive"
	StatusAccessDenied    AccessStatus = "access_denied"
	StatusQuotasExhausted AccessStatus = "quotas_exhausted"
)

// WindowStatus evaluates the campaign window and activation flag for the
// given day. It never returns an admission-level status.
func WindowStatus(c *Campaign, now time.Time) AccessStatus {
	day := dateOnly(now)
	switch {
	case day.Before(dateOnly(c.StartDate)):
		return StatusUpcoming
	case day.After(dateOnly(c.EndDate)):
		return StatusEnded
	case !c.Active:
		return StatusInactive
	default:
		return StatusActive
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
