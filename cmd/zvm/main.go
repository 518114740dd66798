// Command zvm is the terminal Interpreter Host: a bubbletea program
// that drives a vm.VM on its own goroutine and answers its host
// requests from an Elm-architecture event loop.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/cairnwright/zvm/internal/blorb"
	"github.com/cairnwright/zvm/internal/header"
	"github.com/cairnwright/zvm/internal/memory"
	"github.com/cairnwright/zvm/internal/vm"
)

var romFilePath string

func init() {
	flag.StringVar(&romFilePath, "rom", "", "path to a .z3/.z4/.z5/.z8 story file or .zblorb archive")
	flag.Parse()
}

// teaHost implements vm.Host by forwarding every request onto a
// channel the bubbletea program drains, blocking on a dedicated
// response channel for the request kinds that need an answer
// (input, save, restore) before the VM goroutine may proceed.
type teaHost struct {
	out      chan any
	inputCh  chan vm.InputResponse
	saveCh   chan vm.SaveResponse
	restoreCh chan vm.RestoreResponse
}

func newTeaHost() *teaHost {
	return &teaHost{
		out:       make(chan any),
		inputCh:   make(chan vm.InputResponse),
		saveCh:    make(chan vm.SaveResponse),
		restoreCh: make(chan vm.RestoreResponse),
	}
}

func (h *teaHost) Send(request any) any {
	h.out <- request
	switch request.(type) {
	case vm.InputRequest:
		return <-h.inputCh
	case vm.SaveRequest:
		return <-h.saveCh
	case vm.RestoreRequest:
		return <-h.restoreCh
	default:
		return nil
	}
}

type appState int

const (
	stateRunning appState = iota
	stateAwaitingLine
	stateAwaitingChar
)

type model struct {
	host *teaHost

	romPath  string
	saveSlot string // default save file name, derived from the story's name

	lowerText      string
	upperLines     []string
	upperCursorRow int
	upperCursorCol int
	splitHeight    int
	lowerActive    bool

	status      vm.StatusLineUpdate
	style       vm.TextStyle
	foreground  vm.Color
	background  vm.Color

	state appState
	input textinput.Model

	width, height int
	runtimeError  string
	quit          bool
}

func newModel(h *teaHost, romPath string) model {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = ""
	ti.CharLimit = 200

	return model{
		host:       h,
		romPath:    romPath,
		saveSlot:   defaultSaveName(romPath),
		lowerActive: true,
		input:      ti,
		state:      stateRunning,
		foreground: vm.Color{R: 255, G: 255, B: 255},
		background: vm.Color{R: 0, G: 0, B: 0},
	}
}

func defaultSaveName(romPath string) string {
	if romPath == "" {
		return "zvm.qzl"
	}
	return strings.TrimSuffix(romPath, filepathExt(romPath)) + ".qzl"
}

func filepathExt(p string) string {
	if i := strings.LastIndexByte(p, '.'); i >= 0 {
		return p[i:]
	}
	return ""
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForHost(m.host), tea.WindowSize())
}

// hostMessage wraps whatever the VM goroutine sent so bubbletea can
// route it through Update.
type hostMessage struct{ value any }

func waitForHost(h *teaHost) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-h.out
		if !ok {
			return tea.Quit()
		}
		return hostMessage{value: v}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.state {
		case stateAwaitingChar:
			m.state = stateRunning
			ch := keyToZChar(msg)
			m.host.inputCh <- vm.InputResponse{Char: ch}
			return m, nil
		case stateAwaitingLine:
			if msg.Type == tea.KeyEnter {
				m.state = stateRunning
				text := m.input.Value()
				m.lowerText += text + "\n"
				m.input.SetValue("")
				m.host.inputCh <- vm.InputResponse{Text: text}
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil

	case hostMessage:
		return m.handleHostMessage(msg.value)
	}
	return m, nil
}

func (m model) handleHostMessage(raw any) (tea.Model, tea.Cmd) {
	switch req := raw.(type) {
	case vm.PrintRequest:
		m.applyPrint(req)
		return m, waitForHost(m.host)

	case vm.StatusLineUpdate:
		m.status = req
		return m, waitForHost(m.host)

	case vm.SplitWindowRequest:
		m.splitHeight = req.Lines
		m.ensureUpperLines()
		return m, waitForHost(m.host)

	case vm.SetWindowRequest:
		m.lowerActive = req.Window == 0
		return m, waitForHost(m.host)

	case vm.EraseWindowRequest:
		m.eraseWindow(req.Window)
		return m, waitForHost(m.host)

	case vm.SetCursorRequest:
		m.upperCursorRow = req.Line - 1
		m.upperCursorCol = req.Column - 1
		return m, waitForHost(m.host)

	case vm.SetTextStyleRequest:
		m.style = req.Style
		return m, waitForHost(m.host)

	case vm.SetColorRequest:
		m.foreground, m.background = req.Foreground, req.Background
		return m, waitForHost(m.host)

	case vm.SoundEffectRequest:
		return m, waitForHost(m.host) // no audio device in a terminal host

	case vm.InputRequest:
		if req.MaxLength == 0 {
			m.state = stateAwaitingChar
		} else {
			m.state = stateAwaitingLine
			m.input.SetValue(req.Preloaded)
			m.input.CharLimit = req.MaxLength
		}
		return m, nil

	case vm.SaveRequest:
		err := os.WriteFile(m.saveSlot, req.Data, 0644)
		m.host.saveCh <- vm.SaveResponse{Ok: err == nil}
		return m, waitForHost(m.host)

	case vm.RestoreRequest:
		data, err := os.ReadFile(m.saveSlot)
		m.host.restoreCh <- vm.RestoreResponse{Data: data, Ok: err == nil}
		return m, waitForHost(m.host)

	case vm.RuntimeError:
		m.runtimeError = req.Message
		return m, tea.Quit

	case vm.Warning:
		m.lowerText += "[warning: " + req.Message + "]\n"
		return m, waitForHost(m.host)

	case vm.Quit:
		m.quit = true
		return m, tea.Quit

	default:
		return m, waitForHost(m.host)
	}
}

func (m *model) applyPrint(req vm.PrintRequest) {
	if req.Window == 0 {
		m.lowerText += req.Text
		return
	}
	m.ensureUpperLines()
	for _, segment := range strings.Split(req.Text, "\n") {
		m.writeUpperSegment(segment)
	}
}

func (m *model) writeUpperSegment(segment string) {
	if m.upperCursorRow < 0 || m.upperCursorRow >= len(m.upperLines) {
		return
	}
	row := []rune(m.upperLines[m.upperCursorRow])
	for i, r := range segment {
		col := m.upperCursorCol + i
		for col >= len(row) {
			row = append(row, ' ')
		}
		row[col] = r
	}
	m.upperLines[m.upperCursorRow] = string(row)
	m.upperCursorCol += len(segment)
}

func (m *model) ensureUpperLines() {
	width := m.width
	if width == 0 {
		width = 80
	}
	for len(m.upperLines) < m.splitHeight {
		m.upperLines = append(m.upperLines, strings.Repeat(" ", width))
	}
	if len(m.upperLines) > m.splitHeight {
		m.upperLines = m.upperLines[:m.splitHeight]
	}
}

func (m *model) eraseWindow(window int) {
	switch window {
	case -1:
		m.lowerText = ""
		m.upperLines = nil
		m.splitHeight = 0
		m.lowerActive = true
	case -2:
		m.lowerText = ""
		for i := range m.upperLines {
			m.upperLines[i] = strings.Repeat(" ", m.width)
		}
	case 0:
		m.lowerText = ""
	case 1:
		for i := range m.upperLines {
			m.upperLines[i] = strings.Repeat(" ", m.width)
		}
	}
}

func keyToZChar(msg tea.KeyMsg) uint8 {
	switch msg.Type {
	case tea.KeyUp:
		return 129
	case tea.KeyDown:
		return 130
	case tea.KeyLeft:
		return 131
	case tea.KeyRight:
		return 132
	case tea.KeyEnter:
		return 13
	case tea.KeyBackspace:
		return 8
	default:
		if len(msg.Runes) > 0 {
			return uint8(msg.Runes[0])
		}
		return 0
	}
}

func (m model) View() string {
	if m.runtimeError != "" {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000")).Bold(true)
		return errStyle.Render("Z-machine error:") + "\n\n" + m.runtimeError + "\n"
	}
	if m.width == 0 {
		return "Loading..."
	}

	var out strings.Builder
	if m.status.PlaceName != "" {
		statusStyle := lipgloss.NewStyle().Reverse(true).Width(m.width)
		out.WriteString(statusStyle.Render(fmt.Sprintf(" %-40s Score: %d  Moves: %d ", m.status.PlaceName, m.status.Score, m.status.Moves)))
		out.WriteByte('\n')
	}
	for _, line := range m.upperLines {
		out.WriteString(line)
		out.WriteByte('\n')
	}

	bodyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(hex(m.foreground))).
		Background(lipgloss.Color(hex(m.background))).
		Bold(m.style&vm.StyleBold != 0).
		Italic(m.style&vm.StyleItalic != 0).
		Reverse(m.style&vm.StyleReverseVideo != 0)

	wrapped := wordwrap.String(m.lowerText, m.width)
	lines := strings.Split(wrapped, "\n")
	budget := m.height - len(m.upperLines) - 2
	if budget > 0 && len(lines) > budget {
		lines = lines[len(lines)-budget:]
	}
	out.WriteString(bodyStyle.Render(strings.Join(lines, "\n")))

	if m.state == stateAwaitingLine {
		out.WriteString("\n" + m.input.View())
	}
	return out.String()
}

func hex(c vm.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func loadStory(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw) >= 12 && string(raw[0:4]) == "FORM" {
		archive, err := blorb.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("reading blorb archive: %w", err)
		}
		story, ok := archive.StoryFile()
		if !ok {
			return nil, fmt.Errorf("blorb archive %s has no usable Exec/0 story resource", path)
		}
		return story, nil
	}
	return raw, nil
}

func main() {
	if romFilePath == "" {
		fmt.Println("usage: zvm -rom <path-to-story-file>")
		os.Exit(1)
	}

	storyBytes, err := loadStory(romFilePath)
	if err != nil {
		fmt.Println("error loading story:", err)
		os.Exit(1)
	}

	probe := header.New(memory.New(storyBytes, uint32(len(storyBytes)), uint32(len(storyBytes))))
	staticMark := probe.StaticMemoryBase()
	fileLength := probe.FileLength()
	mem := memory.New(storyBytes, uint32(staticMark), fileLength)
	hdr := header.New(mem)
	hdr.Init(header.Capabilities{
		Colors:      true,
		Bold:        true,
		Italic:      true,
		TimedInput:  true,
		SplitScreen: true,
		ScreenRows:  24,
		ScreenCols:  80,
	})

	teaH := newTeaHost()
	machine, err := vm.New(mem, teaH, vm.PolicyContinueWarnOncePerKind)
	if err != nil {
		fmt.Println("error initializing vm:", err)
		os.Exit(1)
	}

	go func() {
		if runErr := machine.Run(); runErr != nil {
			_ = runErr // already reported to the host as a RuntimeError
		}
		close(teaH.out)
	}()

	program := tea.NewProgram(newModel(teaH, romFilePath))
	if _, err := program.Run(); err != nil {
		fmt.Println("error running program:", err)
		os.Exit(1)
	}
}
