package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goliatone/go-formflow/pkg/clock"
)

// HeaderRequestID carries the attempt identifier on outgoing requests.
const HeaderRequestID = "X-Request-ID"

// defaultMaxBody caps how much of a response body is read.
const defaultMaxBody = 64 << 10

// Request is one submission dispatched by a Controller.
type Request struct {
	ID       string
	Endpoint string
	Payload  map[string]string
}

// Response is the settled transport result. Any status code is a response;
// transport failures are returned as errors instead.
type Response struct {
	StatusCode int
	Body       []byte
	Simulated  bool
}

// OK reports a 2xx status.
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Transport delivers a submission.
type Transport interface {
	Send(ctx context.Context, req Request) (Response, error)
}

// HTTPTransport posts the payload as JSON.
type HTTPTransport struct {
	client  *http.Client
	maxBody int64
}

// NewHTTPTransport wraps client; a nil client uses a client with a 30 second
// timeout.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPTransport{client: client, maxBody: defaultMaxBody}
}

// Send implements Transport.
func (t *HTTPTransport) Send(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req.Payload)
	if err != nil {
		return Response{}, fmt.Errorf("submission: encode payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("submission: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.ID != "" {
		httpReq.Header.Set(HeaderRequestID, req.ID)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("submission: post %s: %w", req.Endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBody))
	if err != nil {
		return Response{}, fmt.Errorf("submission: read response: %w", err)
	}
	return Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// SimulatedTransport never touches the network: it waits Delay on Clock and
// reports success.
type SimulatedTransport struct {
	Clock clock.Clock
	Delay time.Duration
}

// Send implements Transport.
func (t SimulatedTransport) Send(ctx context.Context, _ Request) (Response, error) {
	clk := t.Clock
	if clk == nil {
		clk = clock.Real()
	}
	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	case <-clk.After(t.Delay):
		return Response{StatusCode: http.StatusOK, Simulated: true}, nil
	}
}
