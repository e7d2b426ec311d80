package console

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/voltalert/internal/alert"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunAnswersQueuedAlerts(t *testing.T) {
	out := &syncBuffer{}
	p := New(out, "")
	m := alert.New(p, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, m) }()

	var mu sync.Mutex
	var pressed []string
	record := func(s string) func() {
		return func() {
			mu.Lock()
			pressed = append(pressed, s)
			mu.Unlock()
		}
	}
	m.Alert("Error", "Network down", alert.Button{Text: "OK", OnPress: record("first")})
	m.Alert("Charging complete", "Delivered 6.0 kWh.", alert.Button{Text: "OK", OnPress: record("second")})

	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer waitCancel()
	require.NoError(t, WaitIdle(waitCtx, m, time.Millisecond))

	mu.Lock()
	assert.Equal(t, []string{"first", "second"}, pressed)
	mu.Unlock()
	assert.Contains(t, out.String(), "Network down")
	assert.Contains(t, out.String(), "Charging complete")
	assert.Contains(t, out.String(), "-> OK")

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestChooseOutOfRangeFallsBackToFirst(t *testing.T) {
	p := New(nil, "")
	p.Choose = func(alert.Dialog) int { return 7 }
	assert.Equal(t, 0, p.choose(alert.Dialog{Buttons: []alert.Button{{Text: "A"}, {Text: "B"}}}))

	p.Choose = func(alert.Dialog) int { return 1 }
	assert.Equal(t, 1, p.choose(alert.Dialog{Buttons: []alert.Button{{Text: "A"}, {Text: "B"}}}))
}

func TestWaitIdleHonorsContext(t *testing.T) {
	m := alert.New(alert.PresenterFunc(func(alert.Dialog) {}), nil)
	m.Alert("stuck", "")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, WaitIdle(ctx, m, time.Millisecond), context.DeadlineExceeded)
}
