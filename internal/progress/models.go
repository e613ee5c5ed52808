package progress

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a photo record.
type Status string

const (
	// StatusUnknown is the implicit state of photos with no record.
	StatusUnknown    Status = "unknown"
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusInProgress,
	StatusDone,
	StatusFailed,
}

// ParseStatus converts a stored string into a known Status.
func ParseStatus(value string) (Status, bool) {
	candidate := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if candidate == status {
			return status, true
		}
	}
	return StatusUnknown, false
}

// Identity is the stable key of one photo: its date directory, group
// directory, and file name. Records survive renames of the project
// directory itself but not of the photos within it.
type Identity struct {
	Date     string
	Group    string
	FileName string
}

func (id Identity) String() string {
	return id.Date + "/" + id.Group + "/" + id.FileName
}

// Record is one persisted row of processing state.
type Record struct {
	Identity  Identity
	Status    Status
	Error     string
	RunID     string
	UpdatedAt time.Time
}

// Summary counts records by status.
type Summary struct {
	Pending    int
	InProgress int
	Done       int
	Failed     int
}

// Total returns the number of recorded photos.
func (s Summary) Total() int {
	return s.Pending + s.InProgress + s.Done + s.Failed
}
