// Package health serves the Kubernetes liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/danielgtaylor/huma/v2"
)

// Probe tracks whether the instance should receive traffic. It starts ready;
// the server flips it off as soon as shutdown begins so the endpoint controller
// drains the pod before listeners close.
type Probe struct {
	draining atomic.Bool
}

// NewProbe returns a ready probe.
func NewProbe() *Probe {
	return &Probe{}
}

// Ready reports whether the instance accepts traffic.
func (p *Probe) Ready() bool {
	return !p.draining.Load()
}

// Drain marks the instance as not ready. It is idempotent.
func (p *Probe) Drain() {
	p.draining.Store(true)
}

// Status is the probe payload.
type Status struct {
	Status string `json:"status" doc:"Probe status" example:"healthy"`
}

// Output wraps Status for huma.
type Output struct {
	Body Status
}

// Register wires GET /health (liveness) and GET /ready (readiness).
func Register(api huma.API, probe *Probe) {
	huma.Register(api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Liveness probe",
		Tags:        []string{"Health"},
	}, func(context.Context, *struct{}) (*Output, error) {
		return &Output{Body: Status{Status: "healthy"}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-ready",
		Method:      http.MethodGet,
		Path:        "/ready",
		Summary:     "Readiness probe",
		Tags:        []string{"Health"},
		Errors:      []int{http.StatusServiceUnavailable},
	}, func(context.Context, *struct{}) (*Output, error) {
		if !probe.Ready() {
			return nil, huma.Error503ServiceUnavailable("shutting down")
		}
		return &Output{Body: Status{Status: "ready"}}, nil
	})
}
