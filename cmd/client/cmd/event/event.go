package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"eventkeeper/internal/domain/event"
)

// EventCmd is the parent of all event commands.
var EventCmd = &cobra.Command{
	Use:     "event",
	Aliases: []string{"events"},
	Short:   "Create, change and list events",
}

var inputLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime accepts RFC 3339 or a local date with optional time.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q, use YYYY-MM-DD HH:MM", s)
}

// form is the set of flags shared by create and edit.
type form struct {
	name         string
	start        string
	end          string
	duration     time.Duration
	participants string
	completed    bool
}

func (f *form) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.name, "name", "n", "", "event title")
	fs.StringVarP(&f.start, "start", "s", "", "start, YYYY-MM-DD HH:MM")
	fs.StringVarP(&f.end, "end", "e", "", "end, YYYY-MM-DD HH:MM")
	fs.DurationVarP(&f.duration, "duration", "d", 0, "length, used when --end is absent")
	fs.StringVarP(&f.participants, "participants", "p", "", "comma separated participant names")
	fs.BoolVar(&f.completed, "completed", false, "mark as completed")
}

// apply copies the changed flags onto base.
func (f *form) apply(fs *pflag.FlagSet, base event.Event) (event.Event, error) {
	if fs.Changed("name") {
		base.Name = strings.TrimSpace(f.name)
	}
	if fs.Changed("start") {
		start, err := parseTime(f.start)
		if err != nil {
			return base, err
		}
		// moving the start keeps the length unless the end is given too
		length := base.EndDate.Sub(base.StartDate)
		base.StartDate = start
		if !fs.Changed("end") && length > 0 {
			base.EndDate = start.Add(length)
		}
	}
	if fs.Changed("end") {
		end, err := parseTime(f.end)
		if err != nil {
			return base, err
		}
		base.EndDate = end
	} else if fs.Changed("duration") {
		base.EndDate = base.StartDate.Add(f.duration)
	}
	if base.EndDate.IsZero() {
		base.EndDate = base.StartDate
	}
	if fs.Changed("participants") {
		base.Participants = event.ParseParticipants(f.participants)
	}
	if fs.Changed("completed") {
		base.Completed = f.completed
	}

	if err := base.Validate(); err != nil {
		return base, err
	}
	return base, nil
}
