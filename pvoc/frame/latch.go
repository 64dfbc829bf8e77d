package frame

// LatchState is the state of a one-shot Latch.
type LatchState uint8

const (
	// Armed means the guarded condition has not been observed yet.
	Armed LatchState = iota
	// Fired means the condition was observed. There is no way back to Armed
	// short of a new Latch.
	Fired
)

func (s LatchState) String() string {
	if s == Fired {
		return "fired"
	}
	return "armed"
}

// Latch is a one-way armed → fired transition. The zero value is armed.
type Latch struct {
	state LatchState
}

// Trip fires the latch and reports whether this call caused the transition.
func (l *Latch) Trip() bool {
	if l.state == Fired {
		return false
	}
	l.state = Fired
	return true
}

// State returns the current state.
func (l *Latch) State() LatchState { return l.state }

// Fired reports whether the latch has fired.
func (l *Latch) Fired() bool { return l.state == Fired }
