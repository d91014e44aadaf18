package scheduler

import (
	"testing"
	"time"

	"golang-stock-watchlist/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDaily_NextActivation(t *testing.T) {
	d := NewDaily(time.UTC, logger.NewNop())

	require.NoError(t, d.RunDaily("09:30", func() {}))

	next, ok := d.Next(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC), next)

	next, _ = d.Next(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC), next)
}

func TestRunDaily_ReplacesPreviousJob(t *testing.T) {
	d := NewDaily(time.UTC, logger.NewNop())

	require.NoError(t, d.RunDaily("09:00", func() {}))
	require.NoError(t, d.RunDaily("18:15", func() {}))

	assert.Equal(t, "18:15", d.At())
	assert.Len(t, d.cron.Entries(), 1)

	next, _ := d.Next(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 1, 1, 18, 15, 0, 0, time.UTC), next)
}

func TestRunDaily_InvalidTimeKeepsExisting(t *testing.T) {
	d := NewDaily(time.UTC, logger.NewNop())
	require.NoError(t, d.RunDaily("07:45", func() {}))

	assert.Error(t, d.RunDaily("7pm", func() {}))
	assert.Equal(t, "07:45", d.At())
}

func TestNext_NothingScheduled(t *testing.T) {
	d := NewDaily(time.UTC, logger.NewNop())
	_, ok := d.Next(time.Now())
	assert.False(t, ok)
}
