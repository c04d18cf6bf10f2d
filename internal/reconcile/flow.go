package reconcile

import (
	"context"
	"fmt"
)

// FlowState is the client confirmation flow state.
type FlowState string

const (
	FlowIdle       FlowState = "idle"
	FlowConfirming FlowState = "confirming"
	FlowSucceeded  FlowState = "success"
	FlowFailed     FlowState = "failed"
)

type confirmer interface {
	ConfirmOrder(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error)
}

// Flow drives one client's confirmation attempt through
// idle -> confirming -> {success | failed}; failed -> idle is reachable only
// via Retry, which discards all in-flight state and restarts the whole
// resolve/verify/materialize sequence. Not safe for concurrent use; one Flow
// belongs to one client session.
type Flow struct {
	c      confirmer
	state  FlowState
	result *ConfirmResult
	err    error
}

// NewFlow returns a Flow in the idle state.
func NewFlow(c confirmer) *Flow {
	return &Flow{c: c, state: FlowIdle}
}

// State returns the current flow state.
func (f *Flow) State() FlowState { return f.state }

// Result returns the confirmation result once the flow succeeded.
func (f *Flow) Result() *ConfirmResult { return f.result }

// Err returns the failure once the flow failed.
func (f *Flow) Err() error { return f.err }

// Run executes the confirmation. Before the client has finished reading its
// session storage, absent identifiers keep the flow idle rather than failing
// the very first render; the caller runs again once the storage read
// completed. A flow that already left idle reports its settled outcome.
func (f *Flow) Run(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	switch f.state {
	case FlowSucceeded:
		return f.result, nil
	case FlowFailed:
		return nil, f.err
	case FlowConfirming:
		return nil, fmt.Errorf("confirmation already in flight")
	}

	if req.Identifiers.Empty() && req.Session == nil && !req.SessionChecked {
		return nil, nil
	}

	f.state = FlowConfirming
	res, err := f.c.ConfirmOrder(ctx, req)
	if err != nil {
		f.state = FlowFailed
		f.err = err
		return nil, err
	}
	f.state = FlowSucceeded
	f.result = res
	return res, nil
}

// Retry moves a failed flow back to idle so Run can restart cleanly.
func (f *Flow) Retry() error {
	if f.state != FlowFailed {
		return fmt.Errorf("retry is only valid from the failed state, not %s", f.state)
	}
	f.state = FlowIdle
	f.result = nil
	f.err = nil
	return nil
}
