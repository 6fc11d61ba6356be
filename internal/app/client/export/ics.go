// Package export renders the effective view in external calendar formats.
package export

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"eventkeeper/internal/domain/event"
)

const productID = "-//eventkeeper//offline calendar//EN"

// Entry is one event to export. Pending marks changes the server has not confirmed yet.
type Entry struct {
	event.Event
	Pending bool
}

// WriteFile creates path and writes entries to it as ICS.
func WriteFile(path string, entries []Entry, now time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return writeAndClose(f, entries, now)
}

func writeAndClose(wc io.WriteCloser, entries []Entry, now time.Time) (err error) {
	defer func() {
		if cerr := wc.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close export: %w", cerr))
		}
	}()
	return ICS(wc, entries, now)
}

// ICS writes entries as a single VCALENDAR. Pending entries are TENTATIVE,
// completed ones carry the "completed" category.
func ICS(w io.Writer, entries []Entry, now time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, e := range entries {
		ev := cal.AddEvent(uid(e.ID))
		ev.SetDtStampTime(now.UTC())
		ev.SetStartAt(e.StartDate.UTC())
		ev.SetEndAt(e.EndDate.UTC())
		ev.SetSummary(e.Name)

		status := ical.ObjectStatusConfirmed
		if e.Pending {
			status = ical.ObjectStatusTentative
		}
		ev.SetStatus(status)
		if e.Completed {
			ev.AddProperty(ical.ComponentPropertyCategories, "completed")
		}
		for _, p := range e.Participants {
			ev.AddAttendee(attendee(p), ical.WithCN(p))
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}

func uid(id string) string {
	return id + "@eventkeeper"
}

// attendee turns a participant name into a calendar address.
func attendee(name string) string {
	if strings.Contains(name, "@") {
		return "mailto:" + name
	}
	return "urn:eventkeeper:participant:" + url.PathEscape(name)
}
