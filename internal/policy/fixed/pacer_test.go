package fixed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPacerSkipsFirstWait(t *testing.T) {
	t.Parallel()

	p := New(50 * time.Millisecond)
	start := time.Now()
	require.NoError(t, p.Wait(context.Background(), "https://ssc.gov.in"))
	require.Less(t, time.Since(start), 40*time.Millisecond)

	start = time.Now()
	require.NoError(t, p.Wait(context.Background(), "https://upsc.gov.in"))
	require.GreaterOrEqual(t, time.Since(start), 45*time.Millisecond)

	p.Reset()
	start = time.Now()
	require.NoError(t, p.Wait(context.Background(), "https://ssc.gov.in"))
	require.Less(t, time.Since(start), 40*time.Millisecond)
}

func TestPacerHonoursContext(t *testing.T) {
	t.Parallel()

	p := New(time.Hour)
	require.NoError(t, p.Wait(context.Background(), ""))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, p.Wait(ctx, ""), context.DeadlineExceeded)
}

func TestZeroDelayDisablesPacing(t *testing.T) {
	t.Parallel()

	p := New(0)
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Wait(context.Background(), ""))
	}
}
