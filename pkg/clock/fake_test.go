package clock

import (
	"testing"
	"time"
)

func TestFake_AfterFuncFiresOnAdvance(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	clk := NewFake(start)

	var fired []string
	clk.AfterFunc(5*time.Second, func() { fired = append(fired, "five") })
	clk.AfterFunc(time.Second, func() { fired = append(fired, "one") })

	clk.Advance(999 * time.Millisecond)
	if len(fired) != 0 {
		t.Fatalf("fired too early: %v", fired)
	}
	clk.Advance(5 * time.Second)
	if len(fired) != 2 || fired[0] != "one" || fired[1] != "five" {
		t.Fatalf("unexpected firing order: %v", fired)
	}
	if !clk.Now().Equal(start.Add(5*time.Second + 999*time.Millisecond)) {
		t.Fatalf("unexpected now %v", clk.Now())
	}
}

func TestFake_StopCancels(t *testing.T) {
	clk := NewFake(time.Unix(0, 0))
	called := false
	timer := clk.AfterFunc(time.Second, func() { called = true })

	if !timer.Stop() {
		t.Fatal("expected first stop to succeed")
	}
	if timer.Stop() {
		t.Fatal("second stop should report false")
	}
	clk.Advance(2 * time.Second)
	if called {
		t.Fatal("stopped timer fired")
	}
	if clk.Pending() != 0 {
		t.Fatalf("expected no pending waiters, got %d", clk.Pending())
	}
}

func TestFake_AfterWithWaitForTimers(t *testing.T) {
	clk := NewFake(time.Unix(0, 0))
	done := make(chan time.Time, 1)
	go func() {
		done <- <-clk.After(time.Second)
	}()

	clk.WaitForTimers(1)
	clk.Advance(time.Second)

	select {
	case got := <-done:
		if !got.Equal(time.Unix(1, 0)) {
			t.Fatalf("unexpected fire time %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("after channel never fired")
	}
}
