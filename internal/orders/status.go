package orders

type Status string

const (
	StatusPendingSync Status = "pending_sync"
	StatusSynced      Status = "synced"
	StatusError       Status = "error"
	StatusCancelled   Status = "cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusPendingSync: {StatusSynced: true, StatusError: true, StatusCancelled: true},
	StatusError:       {StatusSynced: true, StatusCancelled: true},
	StatusSynced:      {StatusCancelled: true},
	StatusCancelled:   {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
