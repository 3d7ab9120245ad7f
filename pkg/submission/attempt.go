package submission

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Outcome is the terminal result of an attempt.
type Outcome struct {
	Status     model.Status
	StatusCode int
	// Message is the text of the rendered panel.
	Message string
	// FieldErrors holds server-reported field errors rendered inline.
	FieldErrors map[string]string
	PanelID     string
	Simulated   bool
	// Err is the transport error, if the request never produced a response.
	Err error
}

// Attempt is one in-flight or settled submission.
type Attempt struct {
	ID        string
	Endpoint  string
	Payload   map[string]string
	StartedAt time.Time

	once    sync.Once
	done    chan struct{}
	outcome Outcome
}

func newAttempt(id, endpoint string, payload map[string]string, started time.Time) *Attempt {
	return &Attempt{
		ID:        id,
		Endpoint:  endpoint,
		Payload:   payload,
		StartedAt: started,
		done:      make(chan struct{}),
	}
}

// Done is closed once the attempt reaches a terminal state.
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// Outcome returns the result once settled.
func (a *Attempt) Outcome() (Outcome, bool) {
	select {
	case <-a.done:
		return a.outcome, true
	default:
		return Outcome{}, false
	}
}

// Wait blocks until the attempt settles or ctx ends.
func (a *Attempt) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-a.done:
		return a.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

func (a *Attempt) finish(outcome Outcome) {
	a.once.Do(func() {
		a.outcome = outcome
		close(a.done)
	})
}
