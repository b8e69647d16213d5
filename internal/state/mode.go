package state

import "fmt"

// Mode is the input mode the client is in.
type Mode int

const (
	ModeNormal Mode = iota
	ModeTextInput
	ModeChannelSelect
	ModeServerSelect
	ModeCommand
	ModeExiting
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeTextInput:
		return "insert"
	case ModeChannelSelect:
		return "channels"
	case ModeServerSelect:
		return "servers"
	case ModeCommand:
		return "command"
	case ModeExiting:
		return "exiting"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ModeStack is a push-down record of modes. The zero value is in ModeNormal
// with nothing to return to.
type ModeStack struct {
	current Mode
	prev    []Mode
}

// Current returns the active mode.
func (s *ModeStack) Current() Mode {
	return s.current
}

// Depth returns how many modes are waiting underneath the active one.
func (s *ModeStack) Depth() int {
	return len(s.prev)
}

// Push makes m active and remembers the mode it replaced.
func (s *ModeStack) Push(m Mode) {
	s.prev = append(s.prev, s.current)
	s.current = m
}

// Pop returns to the most recently pushed-over mode. Popping an empty stack
// lands in ModeNormal.
func (s *ModeStack) Pop() Mode {
	if len(s.prev) == 0 {
		s.current = ModeNormal
		return s.current
	}
	last := len(s.prev) - 1
	s.current = s.prev[last]
	s.prev = s.prev[:last]
	return s.current
}

// Peek returns the mode Pop would return to.
func (s *ModeStack) Peek() Mode {
	if len(s.prev) == 0 {
		return ModeNormal
	}
	return s.prev[len(s.prev)-1]
}

// Replace swaps the active mode without touching the stack.
func (s *ModeStack) Replace(m Mode) {
	s.current = m
}
