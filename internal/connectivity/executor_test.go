package connectivity_test

import (
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmdmdm-nz/connmon/internal/connectivity"
)

func TestSynchronous_RunsInline(t *testing.T) {
	ran := false
	connectivity.Synchronous.Execute(func() { ran = true })
	assert.True(t, ran)
}

func TestSerialExecutor_RunsInOrder(t *testing.T) {
	e := connectivity.NewSerialExecutor(4)
	defer e.Close()

	var mu sync.Mutex
	var got []int
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		e.Execute(func() {
			mu.Lock()
			got = append(got, i)
			n := len(got)
			mu.Unlock()
			if n == 10 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for tasks")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestSerialExecutor_RecoversPanics(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	e := connectivity.NewSerialExecutor(1)
	defer e.Close()

	done := make(chan struct{})
	e.Execute(func() { panic("listener bug") })
	e.Execute(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("executor stopped after a panicking task")
	}
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, log.ErrorLevel, hook.LastEntry().Level)
}

func TestSerialExecutor_CloseIsIdempotent(t *testing.T) {
	e := connectivity.NewSerialExecutor(1)
	require.NoError(t, e.Close())
	require.NotPanics(t, func() {
		_ = e.Close()
		e.Execute(func() {})
		e.Execute(nil)
	})
}

func TestLogNotifier(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n := connectivity.LogNotifier{Logger: log.NewEntry(logger)}

	n.Notify("offline")

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, log.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "offline", hook.LastEntry().Message)
}
