// Package transport submits graph documents to the execution host's queue endpoint.
package transport

import (
	"context"

	"github.com/alexisbeaulieu97/xyzplot/internal/graph"
)

// Submission is the body of one queue request.
type Submission struct {
	Prompt                  graph.Document `json:"prompt"`
	PartialExecutionTargets []string       `json:"partial_execution_targets,omitempty"`
	ClientID                string         `json:"client_id,omitempty"`
}

// Submitter queues a graph on the execution host. Submit returns once the host has
// acknowledged the request; execution happens later and elsewhere.
type Submitter interface {
	Submit(ctx context.Context, submission Submission) error
}
