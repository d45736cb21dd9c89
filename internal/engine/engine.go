package engine

import "context"

// Invocation carries everything one engine run needs for one target.
type Invocation struct {
	Modality string
	// Target is the planner-resolved address: host:port for ssh/winrm,
	// container name for docker, context/namespace for k8s, org for
	// github, "local" for api.
	Target string

	PolicyFiles    []string
	ThresholdPath  string
	ScoreThreshold int

	// k8s only
	Namespace string
	Context   string
	// github only
	Org string

	// OutputPath receives the engine's structured JSON result.
	OutputPath string
}

// Result is the raw outcome of one engine execution.
type Result struct {
	ExitCode int
	// Started reports whether the engine process ran at all; false means
	// an invocation-level error (missing binary, context cancelled).
	Started bool
	Err     error
}

// Engine is the external scanning engine, treated as an opaque capability.
type Engine interface {
	Scan(ctx context.Context, inv Invocation) Result
}
