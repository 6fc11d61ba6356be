package event

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventkeeper/internal/domain/event"
)

func TestParseTime(t *testing.T) {
	want := time.Date(2026, 5, 4, 10, 30, 0, 0, time.Local)

	for _, in := range []string{"2026-05-04 10:30", "2026-05-04T10:30", " 2026-05-04 10:30 "} {
		got, err := parseTime(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(want), in)
	}

	day, err := parseTime("2026-05-04")
	require.NoError(t, err)
	assert.Equal(t, 0, day.Hour())

	_, err = parseTime("next monday")
	assert.ErrorContains(t, err, "YYYY-MM-DD")
}

func newFlags(t *testing.T, args ...string) (*form, *pflag.FlagSet) {
	t.Helper()
	f := &form{}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.register(fs)
	require.NoError(t, fs.Parse(args))
	return f, fs
}

func TestForm_Create(t *testing.T) {
	f, fs := newFlags(t, "-n", " Standup ", "-s", "2026-05-04 10:00", "-d", "15m", "-p", "ann, ,bob")

	e, err := f.apply(fs, event.Event{})
	require.NoError(t, err)

	assert.Equal(t, "Standup", e.Name)
	assert.Equal(t, 15*time.Minute, e.EndDate.Sub(e.StartDate))
	assert.Equal(t, []string{"ann", "bob"}, e.Participants)
}

func TestForm_EditKeepsLength(t *testing.T) {
	base := event.Event{
		ID: "4", Name: "Review",
		StartDate: time.Date(2026, 5, 4, 10, 0, 0, 0, time.Local),
		EndDate:   time.Date(2026, 5, 4, 11, 30, 0, 0, time.Local),
	}
	f, fs := newFlags(t, "-s", "2026-05-05 14:00")

	e, err := f.apply(fs, base)
	require.NoError(t, err)

	assert.Equal(t, "Review", e.Name)
	assert.Equal(t, 14, e.StartDate.Hour())
	assert.Equal(t, 90*time.Minute, e.EndDate.Sub(e.StartDate))
}

func TestForm_RejectsEndBeforeStart(t *testing.T) {
	f, fs := newFlags(t, "-n", "Oops", "-s", "2026-05-04 10:00", "-e", "2026-05-04 09:00")

	_, err := f.apply(fs, event.Event{})
	assert.ErrorIs(t, err, event.ErrInvalidData)
}

func TestPrompt(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{answer: "y\n", want: true},
		{answer: "YES\n", want: true},
		{answer: "n\n", want: false},
		{answer: "\n", want: false},
		{answer: "", want: false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		confirm := prompt(strings.NewReader(tt.answer), &out, "Standup")

		assert.Equal(t, tt.want, confirm("12"), "answer %q", tt.answer)
		assert.Contains(t, out.String(), `Delete "Standup" (12)? [y/N]`)
	}
}
