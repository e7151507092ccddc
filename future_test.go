package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFuture_Go_ResolvesWithValue(t *testing.T) {
	f := Go(context.Background(), func(ctx context.Context) (int, error) { return 7, nil })
	v, err := f.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

func TestFuture_Resolved(t *testing.T) {
	f := Resolved(3, nil)
	v, err := f.MustGet()
	require.NoError(t, err)
	require.Equal(t, 3, v)
}

func TestFuture_Get_CancelledContext(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	f := Go(context.Background(), func(ctx context.Context) (int, error) {
		close(started)
		<-release
		return 1, nil
	})
	<-started
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	_, err := f.Get(ctx)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	close(release)
}
