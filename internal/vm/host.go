package vm

// This file defines the narrow request/response interface the core
// exchanges with its Interpreter Host. The host owns the terminal,
// sound, and file dialogs; the core only ever describes what it needs
// and waits for a typed response. The VM is single-threaded and
// suspends only while issuing one of these requests.

// TextStyle mirrors the bitmask passed to set_text_style.
type TextStyle uint8

const (
	StyleRoman        TextStyle = 0b0000_0001
	StyleBold         TextStyle = 0b0000_0010
	StyleItalic       TextStyle = 0b0000_0100
	StyleReverseVideo TextStyle = 0b0000_1000
	StyleFixedPitch   TextStyle = 0b0001_0000
)

// Color is an RGB true-color value; NewColor resolves the Z-machine's
// indexed palette (0-12, plus 'current'/'default') into one.
type Color struct {
	R, G, B uint8
}

var standardPalette = map[uint16]Color{
	2:  {0, 0, 0},
	3:  {255, 0, 0},
	4:  {0, 255, 0},
	5:  {255, 255, 0},
	6:  {0, 0, 255},
	7:  {255, 0, 255},
	8:  {0, 255, 255},
	9:  {255, 255, 255},
	10: {192, 192, 192},
	11: {128, 128, 128},
	12: {64, 64, 64},
}

// PrintRequest asks the host to append text to the currently selected
// window, styled per the active TextStyle/colors.
type PrintRequest struct {
	Window int
	Text   string
}

// StatusLineUpdate carries the v3 status-line fields after every SREAD.
type StatusLineUpdate struct {
	PlaceName string
	Score     int
	Moves     int
	IsTimeBased bool
}

// SplitWindowRequest/EraseWindowRequest/SetCursorRequest mirror the
// corresponding opcodes, forwarded verbatim to the host's window model.
type SplitWindowRequest struct{ Lines int }
type EraseWindowRequest struct{ Window int }
type SetCursorRequest struct{ Line, Column int }
type SetWindowRequest struct{ Window int }
type SetTextStyleRequest struct{ Style TextStyle }
type SetColorRequest struct {
	Foreground, Background Color
}
type SoundEffectRequest struct {
	Number   uint16
	Effect   uint16
	Volume   uint8
	Repeats  uint8
}

// InputRequest asks the host to collect a line of text (sread) or a
// single character (read_char). MaxLength is 0 for read_char. If
// TimeoutTenths is nonzero, the host must return after that long even
// without input, yielding an InputResponse with Timeout set.
type InputRequest struct {
	MaxLength     int
	TimeoutTenths int
	Preloaded     string
}

// InputResponse is the host's answer to an InputRequest. Timeout is
// true when the read-interrupt path ran out the clock without
// receiving any characters (spec's supplemented read-interrupt
// control flow); Text holds whatever was typed so far in that case.
type InputResponse struct {
	Text    string
	Char    uint8
	Timeout bool
}

// SaveRequest/RestoreRequest ask the host to persist or retrieve a
// Quetzal save image by whatever storage mechanism it provides
// (filesystem, browser storage, etc); the core only deals in bytes.
type SaveRequest struct {
	Data []byte
}
type SaveResponse struct{ Ok bool }
type RestoreRequest struct{}
type RestoreResponse struct {
	Data []byte
	Ok   bool
}

// RuntimeError is sent to the host when a fatal error kind is
// encountered and execution cannot continue.
type RuntimeError struct {
	Message string
}

// Warning is sent to the host for a recoverable error, deduplicated
// per error kind so the host's transcript isn't flooded.
type Warning struct {
	Message string
}

// Quit signals ordinary program termination (the quit opcode).
type Quit struct{}

// Host is the interface the VM drives. A concrete host (e.g. a
// terminal or browser front end) implements this to receive requests
// and synchronously supply responses; Send returns the response value
// appropriate to the request's dynamic type (InputResponse for
// InputRequest, SaveResponse for SaveRequest, RestoreResponse for
// RestoreRequest, nil otherwise).
type Host interface {
	Send(request any) any
}

// NewColor resolves a get_color-style index against the current
// window colors, given what the game currently has selected.
func NewColor(index uint16, current Color, defaultColor Color) Color {
	switch index {
	case 0:
		return current
	case 1:
		return defaultColor
	default:
		if c, ok := standardPalette[index]; ok {
			return c
		}
		return Color{0, 0, 0}
	}
}
