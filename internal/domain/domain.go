package domain

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a record on the board.
type Status int

const (
	Active Status = iota
	Finished
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Valid reports whether s is one of the declared statuses.
func (s Status) Valid() bool {
	return s == Active || s == Finished
}

// ParseStatus accepts "active" or "finished", case-insensitive.
func ParseStatus(in string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(in)) {
	case "active":
		return Active, nil
	case "finished":
		return Finished, nil
	}
	return Active, fmt.Errorf("invalid status %q (want active or finished)", in)
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

type Record struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Assignees   int    `json:"assignees"`
	Status      Status `json:"status" enum:"active,finished"`
}

// Entry is one line of the activity journal.
type Entry struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Kind       string `json:"kind" enum:"record.added,record.moved"`
	RecordID   string `json:"record_id"`
	Title      string `json:"title"`
	FromStatus string `json:"from_status,omitempty"`
	ToStatus   string `json:"to_status"`
}

const (
	EntryAdded = "record.added"
	EntryMoved = "record.moved"
)
