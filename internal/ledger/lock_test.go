package ledger

import "testing"

func TestToggleTwiceRestoresState(t *testing.T) {
	for _, initial := range []LockState{Editable, Locked} {
		l := NewEditLock(initial)
		first := l.Toggle()
		if first == initial {
			t.Fatalf("Toggle from %s returned %s, want the other state", initial, first)
		}
		if got := l.Toggle(); got != initial {
			t.Fatalf("second Toggle = %s, want %s", got, initial)
		}
		if l.State() != initial {
			t.Fatalf("State() = %s, want %s", l.State(), initial)
		}
	}
}

func TestLockStateString(t *testing.T) {
	if Editable.String() != "editable" {
		t.Fatalf("Editable.String() = %q", Editable.String())
	}
	if Locked.String() != "locked" {
		t.Fatalf("Locked.String() = %q", Locked.String())
	}
	if NewEditLock(Locked).Editable() {
		t.Fatal("locked EditLock reports Editable")
	}
}
