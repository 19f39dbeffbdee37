package workflow

import "fmt"

type State int

const (
	Idle State = iota
	Editing
	Submitting
	Confirmed
	Done
	Cancelled
	Closed
)

var stateNames = [...]string{
	Idle:       "idle",
	Editing:    "editing",
	Submitting: "submitting",
	Confirmed:  "confirmed",
	Done:       "done",
	Cancelled:  "cancelled",
	Closed:     "closed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}

// Finished reports whether no further transition can happen.
func (s State) Finished() bool {
	return s == Done || s == Cancelled || s == Closed
}
