package presence

import (
	"context"
	"testing"

	"idola-backend/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func TestLogPublisher(t *testing.T) {
	var publisher Publisher = NewLogPublisher(telemetry.SlogAPI{})
	require.Nil(t, publisher.Publish(context.Background(), "Ready!"))
	require.Nil(t, publisher.Publish(context.Background(), "12,345 - SuppressionBorderTop100"))
	require.Equal(t, "12,345 - SuppressionBorderTop100", publisher.(*LogPublisher).Last())
	require.Nil(t, publisher.Close())
}
