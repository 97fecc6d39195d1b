package eventloop

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestLoopPostRunsInOrder(t *testing.T) {
	l := New(16)
	defer l.Close()

	var got []int
	done := make(chan struct{})
	for i := 0; i < 3; i++ {
		i := i
		if err := l.Post(func() { got = append(got, i) }); err != nil {
			t.Fatalf("Post() error = %v", err)
		}
	}
	if err := l.Post(func() { close(done) }); err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not run posted callbacks")
	}

	// got is only written on the loop goroutine; done ordered-after them.
	for i, v := range got {
		if v != i {
			t.Errorf("callback order = %v, want ascending", got)
			break
		}
	}
}

func TestLoopCloseIdempotent(t *testing.T) {
	l := New(4)
	l.Close()
	l.Close()

	if err := l.Post(func() {}); err != ErrClosed {
		t.Errorf("Post() after Close = %v, want ErrClosed", err)
	}
	if _, err := l.Guard(); err != ErrClosed {
		t.Errorf("Guard() after Close = %v, want ErrClosed", err)
	}
}

func TestGuardHoldsLoopOpen(t *testing.T) {
	l := New(4)
	g, err := l.Guard()
	if err != nil {
		t.Fatalf("Guard() error = %v", err)
	}

	closed := make(chan struct{})
	go func() {
		l.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close() returned while a guard was outstanding")
	case <-time.After(50 * time.Millisecond):
	}

	// A guarded worker can still post its final completion.
	ran := make(chan struct{})
	if err := g.Post(func() { close(ran) }); err != nil {
		t.Fatalf("guarded Post() error = %v", err)
	}
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("guarded callback did not run")
	}

	g.Release()
	g.Release() // idempotent

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close() did not return after the guard was released")
	}
}

func TestScheduleTimerFires(t *testing.T) {
	l := New(4)
	defer l.Close()

	var canceled atomic.Bool
	fired := make(chan struct{})
	l.ScheduleTimer(10*time.Millisecond, func(c bool) {
		canceled.Store(c)
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
	if canceled.Load() {
		t.Error("timer fired canceled without Cancel()")
	}
}

func TestScheduleTimerCancel(t *testing.T) {
	l := New(4)
	defer l.Close()

	fired := make(chan bool, 1)
	tm := l.ScheduleTimer(20*time.Millisecond, func(c bool) {
		fired <- c
	})
	tm.Cancel()

	select {
	case c := <-fired:
		// A firing already queued onto the loop must observe cancellation.
		if !c {
			t.Error("canceled timer callback observed canceled == false")
		}
	case <-time.After(100 * time.Millisecond):
		// Stopped before firing; equally valid.
	}
}
