package chrono

import (
	"context"
	"testing"
	"time"

	"idola-backend/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func TestTimeLeft(t *testing.T) {
	base := time.Date(2020, 5, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		to     time.Time
		expect string
	}{
		{to: base, expect: "0d 0h 0m"},
		{to: base.Add(90 * time.Minute), expect: "0d 1h 30m"},
		{to: base.Add(49*time.Hour + 59*time.Second), expect: "2d 1h 0m"},
		{to: base.Add(-25 * time.Hour), expect: "1d 1h 0m"},
	}

	for _, test := range testCases {
		require.Equal(t, test.expect, TimeLeft(base, test.to))
	}
}

func TestStandardImplLocation(t *testing.T) {
	clock, err := NewStandardImpl()
	require.Nil(t, err)
	require.Equal(t, "Asia/Tokyo", clock.Now().Location().String())
}

func TestStandardCronSchedule(t *testing.T) {
	c := NewStandardCron(telemetry.SlogAPI{}, time.UTC)
	defer c.Stop()

	require.Nil(t, c.Schedule("save", "@every 10m", func(context.Context) {}))
	err := c.Schedule("relog", "not a spec", func(context.Context) {})
	require.ErrorContains(t, err, "schedule relog")
}

func TestCronLoggerPairs(t *testing.T) {
	require.Equal(t, []any{"entry=1", "next=later"}, pairs([]any{"entry", 1, "next", "later", "dangling"}))
}
