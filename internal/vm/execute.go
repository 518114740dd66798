package vm

import "github.com/cairnwright/zvm/internal/zerror"

// execute dispatches a decoded instruction to its handler, grouped by
// operand-count class the way the opcode tables in the standard are
// laid out (spec §4.F).
func (m *VM) execute(frame *Frame, inst *instruction) error {
	switch inst.count {
	case op0:
		return m.execute0OP(frame, inst)
	case op1:
		return m.execute1OP(frame, inst)
	case op2:
		return m.execute2OP(frame, inst)
	case varOp:
		return m.executeVarOP(frame, inst)
	case extOp:
		return m.executeExtOP(frame, inst)
	default:
		return zerror.New(zerror.KindMalformedInstruction, "unknown operand count class at %#x", inst.pc)
	}
}

// operands resolves every operand of inst to its value, in order.
func (m *VM) operands(inst *instruction) ([]uint16, error) {
	values := make([]uint16, len(inst.operands))
	for i := range inst.operands {
		v, err := m.operandValue(inst, i)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
