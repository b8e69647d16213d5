package state

import "testing"

func TestModeStackPushPop(t *testing.T) {
	var s ModeStack
	if s.Current() != ModeNormal {
		t.Fatalf("expected zero stack in normal mode, got %v", s.Current())
	}

	s.Push(ModeCommand)
	s.Push(ModeTextInput)
	if s.Peek() != ModeCommand {
		t.Fatalf("expected command underneath, got %v", s.Peek())
	}
	if s.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", s.Depth())
	}
	if got := s.Pop(); got != ModeCommand {
		t.Fatalf("expected to pop back to command, got %v", got)
	}
	if got := s.Pop(); got != ModeNormal {
		t.Fatalf("expected to pop back to normal, got %v", got)
	}
}

func TestModeStackNeverUnderflows(t *testing.T) {
	var s ModeStack
	s.Push(ModeServerSelect)
	for i := 0; i < 5; i++ {
		s.Pop()
		if s.Depth() < 0 {
			t.Fatalf("depth went negative after %d pops", i+1)
		}
		if s.Current() != ModeNormal {
			t.Fatalf("expected normal after exhausting stack, got %v", s.Current())
		}
	}
}

func TestModeStackReplaceKeepsDepth(t *testing.T) {
	var s ModeStack
	s.Push(ModeChannelSelect)
	s.Replace(ModeServerSelect)
	if s.Current() != ModeServerSelect || s.Depth() != 1 {
		t.Fatalf("unexpected stack %v/%d", s.Current(), s.Depth())
	}
	if got := s.Pop(); got != ModeNormal {
		t.Fatalf("expected replace to keep the normal base, got %v", got)
	}
}

func TestModeString(t *testing.T) {
	if ModeTextInput.String() != "insert" {
		t.Fatalf("unexpected label %q", ModeTextInput.String())
	}
	if Mode(42).String() != "mode(42)" {
		t.Fatalf("unexpected fallback label %q", Mode(42).String())
	}
}
