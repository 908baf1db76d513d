package models

// Status is the review state of a suggestion. The string value doubles as the
// wire representation in the backing store.
type Status string

const (
	StatusSubmitted   Status = "Submitted"
	StatusInReview    Status = "In Review"
	StatusAccepted    Status = "Accepted"
	StatusRejected    Status = "Rejected"
	StatusImplemented Status = "Implemented"
)

var statuses = []Status{
	StatusSubmitted,
	StatusInReview,
	StatusAccepted,
	StatusRejected,
	StatusImplemented,
}

// ParseStatus maps a raw store value to a Status. Unknown values are returned
// as-is with ok=false so callers can decide whether to reject or pass through.
func ParseStatus(raw string) (Status, bool) {
	for _, s := range statuses {
		if string(s) == raw {
			return s, true
		}
	}
	return Status(raw), false
}

func (s Status) String() string { return string(s) }
