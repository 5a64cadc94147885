package tosser

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchNothingToDo(t *testing.T) {
	env := setupTestEnv(t)
	err := env.tosser(Options{}).Watch(context.Background(), WatchOptions{NoWatch: true})
	require.Error(t, err)
}

func TestWatchBadSchedule(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err := env.tosser(Options{}).Watch(ctx, WatchOptions{NoWatch: true, Schedule: "not a schedule"})
	require.Error(t, err)
}

func TestWatchTossesNewMessages(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := make(chan TossResult, 16)
	done := make(chan error, 1)
	go func() {
		done <- env.tosser(Options{}).Watch(ctx, WatchOptions{
			Debounce: 50 * time.Millisecond,
			OnRun: func(res TossResult, err error) {
				assert.NoError(t, err)
				runs <- res
			},
		})
	}()

	select {
	case res := <-runs:
		assert.Equal(t, 0, res.MessagesImported, "startup run finds nothing")
	case <-time.After(5 * time.Second):
		t.Fatal("startup run did not happen")
	}

	// the watcher is added right after the startup run returns
	time.Sleep(100 * time.Millisecond)
	writeMsg(t, env.echoDir, "1.MSG", msgFields{from: "A", to: "B", body: "watched"})

	deadline := time.After(5 * time.Second)
	imported := 0
	for imported == 0 {
		select {
		case res := <-runs:
			imported += res.MessagesImported
		case <-deadline:
			t.Fatal("watched message was not tossed")
		}
	}
	assert.Equal(t, 1, imported)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop")
	}
}

func TestWatchWaitsForRunningToss(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	var finished atomic.Bool
	ready := make(chan struct{}, 1)
	started := make(chan struct{}, 16)
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- env.tosser(Options{}).Watch(ctx, WatchOptions{
			Debounce: 20 * time.Millisecond,
			OnRun: func(TossResult, error) {
				if runs.Add(1) == 1 {
					ready <- struct{}{}
					return
				}
				started <- struct{}{}
				<-release
				finished.Store(true)
			},
		})
	}()

	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("startup run did not happen")
	}
	time.Sleep(100 * time.Millisecond)
	writeMsg(t, env.echoDir, "1.MSG", msgFields{from: "A", to: "B", body: "slow"})

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("watched run did not start")
	}

	cancel()
	select {
	case <-done:
		t.Fatal("Watch returned while a toss run was still in progress")
	case <-time.After(200 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop")
	}
	assert.True(t, finished.Load())
}

func TestWatchSchedule(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- env.tosser(Options{}).Watch(ctx, WatchOptions{
			NoWatch:  true,
			Schedule: "@every 1s",
			OnRun:    func(TossResult, error) { runs <- struct{}{} },
		})
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-runs:
		case <-time.After(5 * time.Second):
			t.Fatalf("run %d did not happen", i+1)
		}
	}
	cancel()
	require.NoError(t, <-done)
}
