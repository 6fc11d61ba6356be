package event

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Event is a calendar entry as exchanged with the remote authority.
type Event struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	Completed    bool      `json:"completed"`
	Participants []string  `json:"participants"`
}

// Clone returns a copy that shares no memory with e.
func (e Event) Clone() Event {
	e.Participants = slices.Clone(e.Participants)
	return e
}

// Validate checks the fields a user fills in. The sync core never calls it.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidData)
	}
	if !e.StartDate.IsZero() && !e.EndDate.IsZero() && e.EndDate.Before(e.StartDate) {
		return fmt.Errorf("%w: end date is before start date", ErrInvalidData)
	}
	return nil
}

// NormalizeParticipants trims every participant and drops the empty ones.
func NormalizeParticipants(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseParticipants splits a comma separated list as typed by a user.
func ParseParticipants(s string) []string {
	if s == "" {
		return []string{}
	}
	return NormalizeParticipants(strings.Split(s, ","))
}
