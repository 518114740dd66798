package vm

import (
	"github.com/cairnwright/zvm/internal/quetzal"
	"github.com/cairnwright/zvm/internal/zerror"
)

// opSave builds a Quetzal image of the current state and hands it to
// the host to persist. asBranch selects v1-3's branch-on-result form;
// v4+ instead stores 0/1 to a destination variable
// (reportSaveRestoreResult applies the branch form only on v1-3).
func (m *VM) opSave(frame *Frame, inst *instruction, asBranch bool) error {
	img := m.captureImage()
	data := quetzal.Encode(img)

	resp := m.host.Send(SaveRequest{Data: data})
	sr, _ := resp.(SaveResponse)

	return m.reportSaveRestoreResult(frame, sr.Ok, 1, asBranch)
}

// opRestore asks the host for a previously saved image and, if one is
// supplied, replaces the current state with it.
func (m *VM) opRestore(frame *Frame, inst *instruction, asBranch bool) error {
	resp := m.host.Send(RestoreRequest{})
	rr, _ := resp.(RestoreResponse)
	if !rr.Ok {
		return m.reportSaveRestoreResult(frame, false, 2, asBranch)
	}

	img, err := quetzal.Decode(rr.Data)
	if err != nil {
		m.warnOnce(zerror.KindCorruptSave, "restore: %v", err)
		return m.reportSaveRestoreResult(frame, false, 2, asBranch)
	}

	if err := m.applyImage(img); err != nil {
		m.warnOnce(zerror.KindRestoreMismatch, "restore: %v", err)
		return m.reportSaveRestoreResult(frame, false, 2, asBranch)
	}

	// A successful restore replaces the whole call stack; the frame to
	// report into is the restored top frame (its pc was captured right
	// before the original save instruction's store/branch bytes), not
	// the pre-restore frame the caller passed in.
	restored := m.callStack.current()
	if restored == nil {
		return zerror.New(zerror.KindRestoreMismatch, "restored save has no active frame")
	}
	return m.reportSaveRestoreResult(restored, true, 2, asBranch)
}

// reportSaveRestoreResult signals the outcome of save/restore via
// v1-3's branch-on-result form or v4+'s store-a-value form.
// successValue is the value stored on success in the v4+ form (1 for
// save, 2 for restore, per the standard).
func (m *VM) reportSaveRestoreResult(frame *Frame, ok bool, successValue uint16, asBranch bool) error {
	if asBranch && m.header.Version() <= 3 {
		return m.branch(frame, ok)
	}
	v := uint16(0)
	if ok {
		v = successValue
	}
	return m.store(frame, v)
}

// captureImage snapshots dynamic memory and the call stack into a
// Quetzal image ready for encoding.
func (m *VM) captureImage() quetzal.Image {
	serial := m.header.SerialNumber()
	frame := m.callStack.current()
	pc := uint32(0)
	if frame != nil {
		pc = frame.pc
	}

	return quetzal.Image{
		Release:  m.header.Release(),
		Serial:   serial,
		Checksum: m.header.Checksum(),
		PC:       pc,
		Memory:   m.mem.Compress(),
		Frames:   framesToQuetzal(&m.callStack),
	}
}

// applyImage restores dynamic memory and the call stack from img,
// verifying the release/serial/checksum triple matches this story
// file per spec §4.I.
func (m *VM) applyImage(img quetzal.Image) error {
	serial := m.header.SerialNumber()
	if img.Release != m.header.Release() || img.Serial != serial || img.Checksum != m.header.Checksum() {
		return zerror.New(zerror.KindRestoreMismatch, "save file does not match this story (release/serial/checksum mismatch)")
	}

	flags2 := m.header.Flags2()
	if img.UncompressedMemory != nil {
		if err := m.mem.Restore(img.UncompressedMemory); err != nil {
			return err
		}
	} else {
		if err := m.mem.RestoreCompressed(img.Memory); err != nil {
			return err
		}
	}
	m.header.SetFlags2(flags2)

	m.callStack = framesFromQuetzal(img.Frames, img.PC)
	return nil
}

func framesToQuetzal(cs *CallStack) []quetzal.Frame {
	out := make([]quetzal.Frame, len(cs.frames))
	for i, f := range cs.frames {
		argsSupplied := uint8(0)
		for j := 0; j < f.numArgs && j < 7; j++ {
			argsSupplied |= 1 << j
		}
		// Each record carries the pc its caller resumes at; the bottom
		// frame has no caller and records 0.
		returnPC := uint32(0)
		if i > 0 {
			returnPC = cs.frames[i-1].pc
		}
		out[i] = quetzal.Frame{
			ReturnPC:       returnPC,
			DiscardsResult: !f.storeOnReturn,
			ArgsSupplied:   argsSupplied,
			Locals:         append([]uint16(nil), f.locals...),
			EvalStack:      append([]uint16(nil), f.stack...),
		}
	}
	return out
}

func framesFromQuetzal(frames []quetzal.Frame, topPC uint32) CallStack {
	out := make([]Frame, len(frames))
	for i, f := range frames {
		routineType := Function
		if f.DiscardsResult {
			routineType = Procedure
		}
		numArgs := 0
		for b := uint8(0); b < 7; b++ {
			if f.ArgsSupplied&(1<<b) != 0 {
				numArgs = int(b) + 1
			}
		}
		pc := topPC
		if i+1 < len(frames) {
			pc = frames[i+1].ReturnPC
		}
		out[i] = Frame{
			pc:            pc,
			locals:        append([]uint16(nil), f.Locals...),
			stack:         append([]uint16(nil), f.EvalStack...),
			routineType:   routineType,
			numArgs:       numArgs,
			storeOnReturn: routineType == Function,
		}
	}
	return CallStack{frames: out}
}

// saveUndo pushes a snapshot onto the bounded undo ring per the
// supplemented SAVE_UNDO/RESTORE_UNDO opcodes (spec's supplement to
// the base save/restore model).
func (m *VM) saveUndo() uint16 {
	frame := m.callStack.current()
	pc := uint32(0)
	if frame != nil {
		pc = frame.pc
	}
	entry := undoEntry{
		dynamicMemory: append([]byte(nil), m.mem.DynamicImage()...),
		callStack:     m.callStack.clone(),
		pc:            pc,
	}
	m.undo = append(m.undo, entry)
	if len(m.undo) > maxUndoEntries {
		m.undo = m.undo[len(m.undo)-maxUndoEntries:]
	}
	return 1
}

// restoreUndo pops the most recent snapshot and applies it, returning
// the standard's documented 2-on-success/0-on-empty result.
func (m *VM) restoreUndo() (uint16, error) {
	if len(m.undo) == 0 {
		return 0, nil
	}
	entry := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]

	if err := m.mem.Restore(entry.dynamicMemory); err != nil {
		return 0, err
	}
	m.callStack = entry.callStack.clone()
	if frame := m.callStack.current(); frame != nil {
		frame.pc = entry.pc
	}
	return 2, nil
}
