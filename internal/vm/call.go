package vm

import "github.com/cairnwright/zvm/internal/zerror"

// call invokes the routine at the packed address given by the first
// operand, passing the rest as argument values. A packed address of 0
// or 1 is the standard's documented "call to nothing": it returns that
// same literal value (0 or 1) immediately without pushing a frame.
func (m *VM) call(frame *Frame, inst *instruction, routineType RoutineType) error {
	packed, err := m.operandValue(inst, 0)
	if err != nil {
		return err
	}

	if packed == 0 || packed == 1 {
		if routineType == Function {
			return m.store(frame, packed)
		}
		return nil
	}

	routineAddr := m.packedAddress(uint32(packed), false)

	localCount, err := m.mem.ReadByte(routineAddr)
	if err != nil {
		return err
	}
	routineAddr++

	locals := make([]uint16, localCount)
	for i := 0; i < int(localCount); i++ {
		if i+1 < len(inst.operands) {
			v, err := m.operandValue(inst, i+1)
			if err != nil {
				return err
			}
			locals[i] = v
		} else if m.header.Version() < 5 {
			v, err := m.mem.ReadWord(routineAddr)
			if err != nil {
				return err
			}
			locals[i] = v
		}
		if m.header.Version() < 5 {
			routineAddr += 2
		}
	}

	m.callStack.push(Frame{
		pc:            routineAddr,
		locals:        locals,
		routineType:   routineType,
		numArgs:       len(inst.operands) - 1,
		storeOnReturn: routineType == Function,
	})
	return nil
}

// doReturn pops the current frame and, if it was a Function call,
// stores val into the caller's destination variable.
func (m *VM) doReturn(val uint16) error {
	popped, ok := m.callStack.pop()
	if !ok {
		return zerror.New(zerror.KindReturnWithNoCaller, "return with no caller on the stack")
	}
	if popped.captureTarget != nil {
		*popped.captureTarget = val
		return nil
	}
	caller := m.callStack.current()
	if caller == nil {
		m.quit = true
		return nil
	}
	if popped.storeOnReturn {
		return m.store(caller, val)
	}
	return nil
}

// callRoutineCapturing invokes the routine at routineAddr (already
// unpacked) directly, bypassing normal operand passing, and runs it to
// completion, returning its return value. Used by the interpreter
// itself to invoke read-interrupt and sound-interrupt routines, which
// are not reached through a call/call_vs instruction.
func (m *VM) callRoutineCapturing(routineAddr uint32) (uint16, error) {
	if routineAddr == 0 {
		return 0, nil
	}
	localCount, err := m.mem.ReadByte(routineAddr)
	if err != nil {
		return 0, err
	}
	routineAddr++

	locals := make([]uint16, localCount)
	if m.header.Version() < 5 {
		for i := 0; i < int(localCount); i++ {
			v, err := m.mem.ReadWord(routineAddr)
			if err != nil {
				return 0, err
			}
			locals[i] = v
			routineAddr += 2
		}
	}

	result := new(uint16)
	targetDepth := m.callStack.depth()
	m.callStack.push(Frame{pc: routineAddr, locals: locals, routineType: Function, captureTarget: result})

	for m.callStack.depth() > targetDepth {
		if err := m.Step(); err != nil {
			return 0, err
		}
	}
	return *result, nil
}
