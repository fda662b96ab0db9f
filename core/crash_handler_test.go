package core

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGoRecoversAndResets verifies a panicking goroutine runs the reset hook and exits non-zero
func TestGoRecoversAndResets(t *testing.T) {
	exited := make(chan int, 1)
	crashExit = func(code int) { exited <- code }
	defer func() { crashExit = os.Exit }()

	reset := make(chan struct{}, 1)
	SetCrashReset(func() { reset <- struct{}{} })

	Go(func() { panic("boom") })

	select {
	case code := <-exited:
		assert.Equal(t, 1, code)
	case <-time.After(2 * time.Second):
		t.Fatal("crash handler did not exit")
	}
	require.Len(t, reset, 1)
}

func TestHandleCrashNil(t *testing.T) {
	called := false
	SetCrashReset(func() { called = true })
	defer SetCrashReset(nil)

	HandleCrash(nil)
	assert.False(t, called)
}
