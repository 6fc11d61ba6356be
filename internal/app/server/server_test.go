package server

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type countingPurger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPurger) PurgeExpired(context.Context) (int64, error) {
	p.calls.Add(1)
	return 2, p.err
}

func TestNewJanitor_RejectsBadSpec(t *testing.T) {
	_, err := newJanitor("every tuesday", &countingPurger{}, slog.Default())
	assert.ErrorContains(t, err, "every tuesday")
}

func TestNewJanitor_RunsPurge(t *testing.T) {
	for _, purgeErr := range []error{nil, errors.New("db gone")} {
		p := &countingPurger{err: purgeErr}
		c, err := newJanitor("@every 1h", p, slog.Default())
		require.NoError(t, err)

		entries := c.Entries()
		require.Len(t, entries, 1)
		entries[0].WrappedJob.Run()

		assert.Equal(t, int32(1), p.calls.Load())
	}
}
