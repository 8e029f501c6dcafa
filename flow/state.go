package flow

import (
	"errors"
	"fmt"
)

// ValueStack is the operand stack a consumer replays instructions against.
type ValueStack struct {
	values []Value
}

func (s *ValueStack) Push(v Value) { s.values = append(s.values, v) }
func (s *ValueStack) Len() int     { return len(s.values) }

func (s *ValueStack) Pop() (Value, bool) {
	if len(s.values) == 0 {
		return nil, false
	}
	v := s.values[len(s.values)-1]
	s.values = s.values[:len(s.values)-1]
	return v, true
}

func (s *ValueStack) Peek() (Value, bool) {
	if len(s.values) == 0 {
		return nil, false
	}
	return s.values[len(s.values)-1], true
}

var ErrStackUnderflow = errors.New("stack underflow")

// Replay applies the stack effect of every instruction in log order, ignoring
// jumps, and returns the resulting stack.  Unary and binary results are Unknown.
func Replay(pc *PseudoCode) (*ValueStack, error) {
	stack := &ValueStack{}
	for _, inst := range pc.Instructions() {
		pops, _ := inst.StackEffect()
		for n := 0; n < pops; n++ {
			if _, ok := stack.Pop(); !ok {
				return stack, fmt.Errorf("instruction %s: %w", inst, ErrStackUnderflow)
			}
		}
		switch inst.Kind() {
		case OpPush:
			stack.Push(inst.Value())
		case OpUnary, OpBinary:
			stack.Push(Unknown)
		}
	}
	return stack, nil
}

// Verify checks the structural invariants of a finished unit: indices are
// contiguous, every jump targets a bound label inside the log, and replaying
// the log never underflows the stack.
func Verify(pc *PseudoCode) error {
	for i, inst := range pc.Instructions() {
		if inst.Index() != i {
			return fmt.Errorf("instruction at %d has index %d", i, inst.Index())
		}
		if inst.Owner() != pc {
			return fmt.Errorf("instruction %d is owned by another unit", i)
		}
		if inst.Kind() == OpGoto || inst.Kind() == OpConditionalGoto {
			offset, ok := inst.Label().Offset()
			if !ok {
				return fmt.Errorf("instruction %d jumps to unbound label %s", i, inst.Label())
			}
			if offset < 0 || offset > pc.Len() {
				return fmt.Errorf("instruction %d jumps to %s outside the log (%d)", i, inst.Label(), offset)
			}
		}
	}
	_, err := Replay(pc)
	return err
}
