// Package vm implements the Z-machine execution engine: the frame
// stack, instruction decoder, opcode processor, and the driver loop
// that suspends on host requests (spec §4.F/G/H).
package vm

import (
	"math/rand"

	"github.com/cairnwright/zvm/internal/dictionary"
	"github.com/cairnwright/zvm/internal/header"
	"github.com/cairnwright/zvm/internal/memory"
	"github.com/cairnwright/zvm/internal/zerror"
	"github.com/cairnwright/zvm/internal/zobject"
	"github.com/cairnwright/zvm/internal/zstring"
)

// ErrorPolicy controls what happens when a recoverable error occurs,
// per spec §4.H.
type ErrorPolicy int

const (
	// PolicyContinueWarnOncePerKind logs each distinct recoverable
	// error kind once, then proceeds as if the operation was a no-op.
	PolicyContinueWarnOncePerKind ErrorPolicy = iota
	// PolicyContinueWarnAlways logs every occurrence.
	PolicyContinueWarnAlways
	// PolicyIgnore silently proceeds.
	PolicyIgnore
	// PolicyAbort treats every recoverable error as fatal.
	PolicyAbort
)

// VM is one running story: its memory image, decoded header and
// object/dictionary tables, call stack, and pending host connection.
type VM struct {
	mem        *memory.Memory
	header     *header.Header
	objects    *zobject.Tree
	dict       *dictionary.Dictionary
	alphabets  *zstring.Alphabets
	decoder    *zstring.Decoder
	abbrevBase uint16
	extensionTableBase uint16

	callStack CallStack
	rng       *rand.Rand
	predictableSeed    int64
	predictable        bool
	predictableCounter int64

	host   Host
	policy ErrorPolicy
	warned map[zerror.Kind]bool

	streams streamState
	screen  screenState

	undo []undoEntry

	quit bool
}

// streamState tracks which of the four Z-machine output streams are
// active and the memory-stream redirection stack (spec's output
// stream opcodes).
type streamState struct {
	screen     bool
	transcript bool
	memory     []memoryStream
	commands   bool
}

type memoryStream struct {
	base uint32
	ptr  uint32
}

// screenState is the (non-v6) two-window screen model: which window is
// selected, the split height, and the current style/color selections.
// The host owns actual rendering; this is just the state the opcodes
// mutate.
type screenState struct {
	lowerActive    bool
	splitHeight    int
	style          TextStyle
	foreground     Color
	background     Color
	defaultForeground Color
	defaultBackground Color
}

// undoEntry is one SAVE_UNDO snapshot: a deep copy of dynamic memory
// and the call stack, per spec's bounded-undo supplement.
type undoEntry struct {
	dynamicMemory []byte
	callStack     CallStack
	pc            uint32
}

const maxUndoEntries = 10

// Config bundles the inputs needed to boot a VM from a loaded story.
type Config struct {
	Memory     *memory.Memory
	Host       Host
	Policy     ErrorPolicy
	RNGSeed    int64 // 0 means use real randomness
}

// New builds a VM over mem (the loaded story file) and wires it to
// host. The header's boot-time capability negotiation is the caller's
// responsibility (via header.Init) before New is called, matching the
// teacher's load-then-initialize ordering.
func New(mem *memory.Memory, host Host, policy ErrorPolicy) (*VM, error) {
	h := header.New(mem)
	alt := uint16(0)
	if h.Version() >= 5 {
		alt, _ = mem.ReadWord(uint32(header.OffsetAlphabetTableBase))
	}
	alphabets := zstring.LoadAlphabets(mem, alt)
	abbrevBase := h.AbbreviationsBase()

	extensionTableBase := uint16(0)
	if h.Version() >= 5 {
		extensionTableBase, _ = mem.ReadWord(uint32(header.OffsetExtensionTableBase))
	}

	dict, err := dictionary.Parse(mem, h.DictionaryBase(), h.Version(), alphabets, abbrevBase)
	if err != nil {
		return nil, err
	}

	objects := zobject.New(mem, h.ObjectTableBase(), h.Version(), alphabets, abbrevBase)
	decoder := zstring.NewDecoder(mem, alphabets, abbrevBase, extensionTableBase)

	m := &VM{
		mem:        mem,
		header:     h,
		objects:    objects,
		dict:       dict,
		alphabets:  alphabets,
		decoder:    decoder,
		abbrevBase: abbrevBase,
		extensionTableBase: extensionTableBase,
		host:       host,
		policy:     policy,
		warned:     make(map[zerror.Kind]bool),
		rng:        rand.New(rand.NewSource(1)),
		streams:    streamState{screen: true},
		screen: screenState{
			lowerActive:       true,
			foreground:        Color{255, 255, 255},
			background:        Color{0, 0, 0},
			defaultForeground: Color{255, 255, 255},
			defaultBackground: Color{0, 0, 0},
		},
	}

	startPC := uint32(h.InitialPC())
	if h.Version() != 6 {
		m.callStack.push(Frame{pc: startPC, routineType: Function})
	}

	return m, nil
}

// Run drives the instruction loop until quit or a fatal error.
func (m *VM) Run() error {
	for !m.quit {
		if err := m.Step(); err != nil {
			if zerr, ok := err.(*zerror.Error); ok && !zerr.Kind.Fatal() && m.policy != PolicyAbort {
				m.reportWarning(zerr)
				continue
			}
			m.host.Send(RuntimeError{Message: err.Error()})
			return err
		}
	}
	m.host.Send(Quit{})
	return nil
}

// Step decodes and executes exactly one instruction.
func (m *VM) Step() error {
	frame := m.callStack.current()
	if frame == nil {
		return zerror.New(zerror.KindReturnWithNoCaller, "no active call frame")
	}

	inst, err := m.decode(frame)
	if err != nil {
		return err
	}

	return m.execute(frame, &inst)
}

func (m *VM) readByteIncPC(frame *Frame) (uint8, error) {
	v, err := m.mem.ReadByte(frame.pc)
	frame.pc++
	return v, err
}

func (m *VM) readWordIncPC(frame *Frame) (uint16, error) {
	v, err := m.mem.ReadWord(frame.pc)
	frame.pc += 2
	return v, err
}

// packedAddress unpacks a routine or string address per spec §4.F's
// version-dependent scale factor (and v7's routine/string offsets).
func (m *VM) packedAddress(addr uint32, isString bool) uint32 {
	v := m.header.Version()
	switch {
	case v < 4:
		return 2 * addr
	case v < 6:
		return 4 * addr
	case v < 8:
		offset := uint32(m.header.RoutinesOffset())
		if isString {
			offset = uint32(m.header.StringOffset())
		}
		return 4*addr + 8*offset
	default:
		return 8 * addr
	}
}

// reportWarning sends a Warning to the host, applying the configured
// dedup policy. Under PolicyAbort, every recoverable error is treated
// as fatal instead: the host receives a RuntimeError and the VM stops,
// even when the error reaches here through a convention callback
// (warnOnce) rather than Run's own Step error path.
func (m *VM) reportWarning(err *zerror.Error) {
	if m.policy == PolicyAbort {
		m.host.Send(RuntimeError{Message: err.Error()})
		m.quit = true
		return
	}
	switch m.policy {
	case PolicyIgnore:
		return
	case PolicyContinueWarnOncePerKind:
		if m.warned[err.Kind] {
			return
		}
		m.warned[err.Kind] = true
	}
	m.host.Send(Warning{Message: err.Error()})
}

// warnOnce is used by opcode handlers for conditions that are
// recoverable-by-convention (not modeled as a full zerror), such as a
// stack underflow read that the standard asks interpreters to survive.
func (m *VM) warnOnce(kind zerror.Kind, format string, args ...any) {
	m.reportWarning(zerror.New(kind, format, args...))
}
