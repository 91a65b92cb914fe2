package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/argo-greeting/internal/http/greeting"
	"github.com/janisto/argo-greeting/internal/http/health"
)

// Deps carries what the operations need at registration time.
type Deps struct {
	Recorder greeting.Recorder
	Probe    *health.Probe
}

// Register wires all HTTP operations into the provided API.
func Register(api huma.API, deps Deps) {
	greeting.Register(api, deps.Recorder)
	health.Register(api, deps.Probe)
}
