package deal

import "time"

// Status is the triage disposition of a deal.
type Status string

const (
	// StatusNew is assigned at insert time to deals that qualified for review.
	StatusNew Status = "NEW"
	// StatusUploaded marks a deal the reviewer has published.
	StatusUploaded Status = "UPLOADED"
	// StatusPending marks a deal the reviewer put aside for a later decision.
	StatusPending Status = "PENDING"
	// StatusDiscarded is assigned at insert time to deals below the alert threshold.
	StatusDiscarded Status = "DISCARDED"
)

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusUploaded, StatusPending, StatusDiscarded:
		return true
	}
	return false
}

// Deal is a persisted hot deal. Only Status changes after insert; every other
// field is write-once.
type Deal struct {
	ID         uint64    `json:"id"`
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	FinalPrice int       `json:"final_price"`
	TotalScore float64   `json:"total_score"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
