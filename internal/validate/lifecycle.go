package validate

import (
	"context"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog"
)

// File validation states.
const (
	StateReading      = "reading"
	StateVersionCheck = "version_check"
	StateValidating   = "validating"
	StateSkipped      = "skipped"
	StateDone         = "done"
	StateFaulted      = "faulted"
)

// File validation events.
const (
	EventRead     = "read"
	EventEmpty    = "empty"
	EventSkip     = "skip"
	EventValidate = "validate"
	EventFinish   = "finish"
	EventFault    = "fault"
)

// newLifecycle returns the state machine that orders the phases of one file:
// reading, version check, then either validating or skipped. A fault in any
// unfinished phase moves the file to faulted.
func newLifecycle(logger zerolog.Logger) *fsm.FSM {
	return fsm.NewFSM(
		StateReading,
		fsm.Events{
			{Name: EventRead, Src: []string{StateReading}, Dst: StateVersionCheck},
			{Name: EventEmpty, Src: []string{StateReading}, Dst: StateDone},
			{Name: EventSkip, Src: []string{StateVersionCheck}, Dst: StateSkipped},
			{Name: EventValidate, Src: []string{StateVersionCheck}, Dst: StateValidating},
			{Name: EventFinish, Src: []string{StateValidating}, Dst: StateDone},
			{Name: EventFault, Src: []string{StateReading, StateVersionCheck, StateValidating}, Dst: StateFaulted},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logger.Trace().Str("from", e.Src).Str("to", e.Dst).Msg("file state")
			},
		},
	)
}
