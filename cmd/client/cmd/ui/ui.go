// Package ui formats sync core results for the terminal.
package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"eventkeeper/internal/app/client"
	"eventkeeper/internal/domain/event"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"

	timeLayout = "2006-01-02 15:04"
)

var (
	offline = color.New(color.FgYellow, color.Bold)
	queued  = color.New(color.FgCyan)
	warning = color.New(color.FgRed)
	ok      = color.New(color.FgGreen)
)

// Row is the printable form of a view entry.
type Row struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	StartDate    time.Time `json:"startDate" yaml:"startDate"`
	EndDate      time.Time `json:"endDate" yaml:"endDate"`
	Completed    bool      `json:"completed" yaml:"completed"`
	Participants []string  `json:"participants" yaml:"participants"`
	Pending      bool      `json:"pending" yaml:"pending"`
	Intent       string    `json:"intent,omitempty" yaml:"intent,omitempty"`
}

func NewRow(v client.ViewEvent) Row {
	return Row{
		ID:           v.ID,
		Name:         v.Name,
		StartDate:    v.StartDate,
		EndDate:      v.EndDate,
		Completed:    v.Completed,
		Participants: v.Participants,
		Pending:      v.Pending,
		Intent:       string(v.Intent),
	}
}

// PrintEvents writes the view in the requested format.
func PrintEvents(w io.Writer, view []client.ViewEvent, format string) error {
	rows := make([]Row, 0, len(view))
	for _, v := range view {
		rows = append(rows, NewRow(v))
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatYAML:
		return yaml.NewEncoder(w).Encode(rows)
	case FormatTable, "":
		return eventTable(w, rows)
	default:
		return fmt.Errorf("unknown format %q, want table, json or yaml", format)
	}
}

func eventTable(w io.Writer, rows []Row) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No events.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTART\tEND\tDONE\tPARTICIPANTS\tSYNC")
	for _, r := range rows {
		done := ""
		if r.Completed {
			done = "x"
		}
		sync := ""
		if r.Pending {
			sync = "pending " + r.Intent
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Name,
			r.StartDate.Local().Format(timeLayout), r.EndDate.Local().Format(timeLayout),
			done, strings.Join(r.Participants, ", "), sync)
	}
	return tw.Flush()
}

// PrintPending lists queued operations in drain order.
func PrintPending(w io.Writer, ops []event.PendingOp, asJSON bool) error {
	if asJSON {
		return writeJSON(w, ops)
	}
	if len(ops) == 0 {
		_, err := fmt.Fprintln(w, "Nothing waiting to sync.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tINTENT\tID\tNAME\tQUEUED\tATTEMPTS\tLAST ERROR")
	for i, op := range ops {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			i+1, op.Intent, op.ID, op.Name,
			op.QueuedAt.Local().Format(timeLayout), op.Attempts, op.LastError)
	}
	return tw.Flush()
}

// Outcome reports how a mutation was handled.
func Outcome(w io.Writer, action string, out client.Outcome) {
	if out.Queued {
		queued.Fprintf(w, "%s %s queued. %s\n", action, out.Event.ID, out.Notice)
		return
	}
	ok.Fprintf(w, "%s %s\n", action, out.Event.ID)
}

// Banner shows the connectivity state.
func Banner(w io.Writer, online bool) {
	if online {
		ok.Fprintln(w, "Online. Pending changes will be synced.")
		return
	}
	offline.Fprintln(w, "You are offline. Changes are saved locally and will sync when the server is back.")
}

// Report summarises one drain.
func Report(w io.Writer, report *client.DrainReport) {
	if report == nil {
		return
	}
	if len(report.Items) == 0 {
		fmt.Fprintln(w, "Nothing to sync.")
		return
	}
	ok.Fprintf(w, "Synced %d of %d change(s).\n", report.Synced(), len(report.Items))
	for _, it := range report.Items {
		if it.RemoteID != "" && it.RemoteID != it.ID {
			fmt.Fprintf(w, "  %s is now %s\n", it.ID, it.RemoteID)
		}
	}
	Warning(w, report.Warning())
}

// Warning prints err in red. Sync warnings get one line per failed item.
func Warning(w io.Writer, err error) {
	if err == nil {
		return
	}
	var sw *client.SyncWarning
	if errors.As(err, &sw) {
		warning.Fprintf(w, "%d change(s) could not be synced and stay queued:\n", len(sw.Failed))
		for _, f := range sw.Failed {
			warning.Fprintf(w, "  %s %s: %v\n", f.Intent, f.ID, f.Err)
		}
		return
	}
	warning.Fprintf(w, "Warning: %v\n", err)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
