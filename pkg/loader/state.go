// Package loader drives retrieval of a chosen asset: a pure loading state
// machine plus a controller that feeds it download progress and emits
// lifecycle callbacks to the rendering collaborator.
package loader

import "fmt"

// State is a phase of the loading lifecycle.
type State int

const (
	StatePending State = iota
	StateLoading
	StateProcessing
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateLoading:
		return "loading"
	case StateProcessing:
		return "processing"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Progress reports how much of the payload has arrived.
type Progress struct {
	BytesLoaded int64   `json:"bytesLoaded"`
	BytesTotal  int64   `json:"bytesTotal"`
	Percent     float64 `json:"percent"`
}

// Machine is the loading lifecycle state machine:
//
//	pending -> loading -> processing -> ready -> (grace) -> pending
//	loading/processing -> error -> loading (retry) | pending (cancel)
//
// It is deliberately free of side effects and not goroutine-safe; the
// controller serializes access and performs the I/O.
type Machine struct {
	state    State
	progress Progress
	errMsg   string
}

// NewMachine starts in pending.
func NewMachine() *Machine {
	return &Machine{state: StatePending}
}

func (m *Machine) State() State       { return m.state }
func (m *Machine) Progress() Progress { return m.progress }
func (m *Machine) Err() string        { return m.errMsg }

func (m *Machine) invalid(event string) error {
	return fmt.Errorf("invalid transition: %s in state %s", event, m.state)
}

// Start begins a load: pending -> loading.
func (m *Machine) Start() error {
	if m.state != StatePending {
		return m.invalid("start")
	}
	m.state = StateLoading
	m.progress = Progress{}
	m.errMsg = ""
	return nil
}

// Advance records download progress. Reaching 100% moves to processing.
func (m *Machine) Advance(loaded, total int64) error {
	if m.state != StateLoading {
		return m.invalid("progress")
	}

	p := Progress{BytesLoaded: loaded, BytesTotal: total}
	if total > 0 {
		p.Percent = float64(loaded) / float64(total) * 100
		if p.Percent > 100 {
			p.Percent = 100
		}
	}
	m.progress = p

	if p.Percent >= 100 {
		m.state = StateProcessing
	}
	return nil
}

// Complete finishes the decode step: processing -> ready.
func (m *Machine) Complete() error {
	if m.state != StateProcessing {
		return m.invalid("complete")
	}
	m.state = StateReady
	return nil
}

// Fail records a retrieval or decode failure: loading/processing -> error.
func (m *Machine) Fail(msg string) error {
	if m.state != StateLoading && m.state != StateProcessing {
		return m.invalid("fail")
	}
	m.state = StateError
	m.errMsg = msg
	return nil
}

// Retry re-enters loading after a failure: error -> loading.
func (m *Machine) Retry() error {
	if m.state != StateError {
		return m.invalid("retry")
	}
	m.state = StateLoading
	m.progress = Progress{}
	m.errMsg = ""
	return nil
}

// Cancel abandons an active load: loading/processing/error -> pending, with
// progress and error cleared. Cancel in pending is a harmless no-op.
func (m *Machine) Cancel() error {
	switch m.state {
	case StatePending:
		return nil
	case StateLoading, StateProcessing, StateError:
		m.state = StatePending
		m.progress = Progress{}
		m.errMsg = ""
		return nil
	default:
		return m.invalid("cancel")
	}
}

// Settle resets the indicator after the display grace period:
// ready -> pending.
func (m *Machine) Settle() error {
	if m.state != StateReady {
		return m.invalid("settle")
	}
	m.state = StatePending
	m.progress = Progress{}
	return nil
}
