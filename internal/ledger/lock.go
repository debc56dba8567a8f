package ledger

// LockState is the state of an EditLock.
type LockState bool

// EditLock states.
const (
	Locked   LockState = false
	Editable LockState = true
)

func (s LockState) String() string {
	if s == Editable {
		return "editable"
	}
	return "locked"
}

// EditLock gates editing of the fixed income and fixed expenses in the
// presentation layer. It lives in memory only.
type EditLock struct {
	state LockState
}

// NewEditLock returns a lock in the given initial state.
func NewEditLock(initial LockState) *EditLock {
	return &EditLock{state: initial}
}

// Toggle flips the state and returns the new one.
func (l *EditLock) Toggle() LockState {
	l.state = !l.state
	return l.state
}

// State returns the current state.
func (l *EditLock) State() LockState {
	return l.state
}

// Editable reports whether fixed values may be edited.
func (l *EditLock) Editable() bool {
	return l.state == Editable
}
