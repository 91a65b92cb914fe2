package logging

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

const traceparentHeader = "traceparent"

// W3C Trace Context: {version}-{trace-id}-{parent-id}-{trace-flags}
var traceparentRe = regexp.MustCompile(`^([0-9a-fA-F]{2})-([0-9a-fA-F]{32})-([0-9a-fA-F]{16})-([0-9a-fA-F]{2})$`)

// traceparent holds the parts of a traceparent header the log correlation needs.
type traceparent struct {
	traceID string
	spanID  string
	sampled bool
}

func parseTraceparent(header string) (traceparent, bool) {
	m := traceparentRe.FindStringSubmatch(header)
	if len(m) != 5 {
		return traceparent{}, false
	}
	return traceparent{traceID: m[2], spanID: m[3], sampled: m[4] == "01"}, true
}

func traceResource(projectID, traceID string) string {
	return fmt.Sprintf("projects/%s/traces/%s", projectID, traceID)
}

// requestLogger derives the per-request logger. Trace fields are only attached when
// both a project ID and a well-formed traceparent header are present.
func requestLogger(base *zap.Logger, header, projectID, requestID string) (*zap.Logger, string) {
	if base == nil {
		base = zap.NewNop()
	}
	var (
		fields      []zap.Field
		correlation string
	)
	if tp, ok := parseTraceparent(header); ok && projectID != "" {
		correlation = traceResource(projectID, tp.traceID)
		fields = append(fields,
			zap.String("logging.googleapis.com/trace", correlation),
			zap.String("logging.googleapis.com/spanId", tp.spanID),
			zap.Bool("logging.googleapis.com/trace_sampled", tp.sampled),
		)
	}
	if requestID != "" {
		fields = append(fields, zap.String("requestId", requestID))
		if correlation == "" {
			correlation = requestID
		}
	}
	if len(fields) == 0 {
		return base, correlation
	}
	return base.With(fields...), correlation
}
