package greeting

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/argo-greeting/internal/platform/logging"
)

// Recorder is notified each time a greeting is served.
type Recorder interface {
	GreetingServed()
}

type nopRecorder struct{}

func (nopRecorder) GreetingServed() {}

// Register wires GET / into api. The response is built once here, so every request
// returns the same value and the handler touches no shared mutable state.
func Register(api huma.API, rec Recorder) {
	if rec == nil {
		rec = nopRecorder{}
	}
	out := &Output{Body: Response{Message: Message}}

	huma.Register(api, huma.Operation{
		OperationID: "get-greeting",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Get the service greeting",
		Description: "Returns a fixed greeting. Stateless and idempotent.",
		Tags:        []string{"Greeting"},
	}, func(ctx context.Context, _ *struct{}) (*Output, error) {
		applog.LogInfo(ctx, "greeting served", zap.String("path", "/"))
		rec.GreetingServed()
		return out, nil
	})
}
