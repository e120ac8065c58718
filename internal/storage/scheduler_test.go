package storage

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerDeliversResult(t *testing.T) {
	s := NewScheduler(4, nil, nil)
	defer s.Close()

	v, err := s.Wait("ok", func() (interface{}, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	wantErr := errors.New("boom")
	_, err = s.Wait("fail", func() (interface{}, error) { return nil, wantErr })
	assert.ErrorIs(t, err, wantErr)
}

func TestSchedulerFIFOOrder(t *testing.T) {
	s := NewScheduler(32, nil, nil)
	defer s.Close()

	var mu sync.Mutex
	var order []int
	var outs []<-chan Outcome
	for i := 0; i < 10; i++ {
		i := i
		outs = append(outs, s.Submit("task", func() (interface{}, error) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil, nil
		}))
	}
	for _, out := range outs {
		<-out
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestSchedulerNeverOverlapsTasks(t *testing.T) {
	s := NewScheduler(32, nil, nil)
	defer s.Close()

	var running atomic.Int32
	var overlapped atomic.Bool
	var outs []<-chan Outcome
	for i := 0; i < 8; i++ {
		outs = append(outs, s.Submit("task", func() (interface{}, error) {
			if running.Add(1) > 1 {
				overlapped.Store(true)
			}
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
			return nil, nil
		}))
	}
	for _, out := range outs {
		<-out
	}

	assert.False(t, overlapped.Load())
}

func TestSchedulerSubmitterNotBlockedByRunningTask(t *testing.T) {
	s := NewScheduler(4, nil, nil)
	defer s.Close()

	release := make(chan struct{})
	slow := s.Submit("slow", func() (interface{}, error) {
		<-release
		return nil, nil
	})

	// submitting behind an in-flight task returns immediately
	done := make(chan struct{})
	go func() {
		s.Submit("queued", func() (interface{}, error) { return nil, nil })
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked behind a running task")
	}

	close(release)
	<-slow
}

func TestSchedulerClosedRejectsWork(t *testing.T) {
	s := NewScheduler(4, nil, nil)
	s.Close()

	_, err := s.Wait("late", func() (interface{}, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrSchedulerClosed)
}

func TestSchedulerCloseDrainsQueue(t *testing.T) {
	s := NewScheduler(16, nil, nil)

	var done atomic.Int32
	for i := 0; i < 5; i++ {
		s.Submit("task", func() (interface{}, error) {
			done.Add(1)
			return nil, nil
		})
	}
	s.Close()

	assert.Equal(t, int32(5), done.Load())
}
