package session

import (
	"context"

	"predictd/pkg/types"
)

// State is the lifecycle state of the interactive session.
type State string

const (
	// StateIdle means no text has been entered and nothing is displayed.
	StateIdle State = "idle"
	// StateAwaitingInput means text (or a retained result) is present and
	// no request is in flight.
	StateAwaitingInput State = "awaiting_input"
	// StateRequesting means a prediction call is in flight. New triggers
	// are ignored until it resolves.
	StateRequesting State = "requesting"
	// StateDisplaying means the latest request succeeded and its result is
	// the one shown.
	StateDisplaying State = "displaying"
	// StateFailed means the latest request failed. The previous result, if
	// any, is retained alongside the error.
	StateFailed State = "failed"
)

// Requester is the prediction boundary the session drives. It is satisfied
// by predictor.Client and predictor.Cached.
type Requester interface {
	Predict(ctx context.Context, req types.PredictRequest) (*types.PredictionResult, error)
}
