// Command zvmbrowse lists story files published on the IF-Archive and
// downloads the one the user picks, caching it on disk for cmd/zvm to
// load. It never runs the interpreter itself: resolving and fetching a
// story is a separate concern from playing it.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cairnwright/zvm/internal/ifarchive"
)

var cacheDir string

func init() {
	flag.StringVar(&cacheDir, "cache", defaultCacheDir(), "directory to save downloaded stories into")
	flag.Parse()
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".zvmbrowse-cache"
	}
	return filepath.Join(dir, "zvmbrowse")
}

var docStyle = lipgloss.NewStyle().Margin(1, 2)

type browseState int

const (
	stateLoading browseState = iota
	stateChoosing
	stateDownloading
	stateDone
)

// storyItem adapts ifarchive.Story to list.Item.
type storyItem ifarchive.Story

func (s storyItem) Title() string       { return s.Name }
func (s storyItem) Description() string { return s.URL }
func (s storyItem) FilterValue() string { return s.Name }

type storiesFetchedMsg []list.Item
type storySavedMsg string
type failedMsg struct{ error }

type model struct {
	client   *ifarchive.Client
	state    browseState
	list     list.Model
	spinner  spinner.Model
	err      error
	savedTo  string
}

func newModel() model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return model{
		client:  ifarchive.NewClient(""),
		state:   stateLoading,
		list:    list.New(nil, list.NewDefaultDelegate(), 0, 0),
		spinner: s,
	}
}

func (m model) Init() tea.Cmd {
	m.list.SetShowTitle(false)
	return tea.Batch(m.spinner.Tick, fetchStories(m.client))
}

func fetchStories(c *ifarchive.Client) tea.Cmd {
	return func() tea.Msg {
		stories, err := c.List()
		if err != nil {
			return failedMsg{err}
		}
		items := make([]list.Item, len(stories))
		for i, s := range stories {
			items[i] = storyItem(s)
		}
		return storiesFetchedMsg(items)
	}
}

func cachePath(name string) string {
	hash := sha256.Sum256([]byte(name))
	return filepath.Join(cacheDir, hex.EncodeToString(hash[:])+"-"+name)
}

func saveStory(c *ifarchive.Client, s ifarchive.Story) tea.Cmd {
	return func() tea.Msg {
		dest := cachePath(s.Name)
		if _, err := os.Stat(dest); err == nil {
			return storySavedMsg(dest)
		}
		data, err := c.Fetch(s)
		if err != nil {
			return failedMsg{err}
		}
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			return failedMsg{err}
		}
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return failedMsg{err}
		}
		return storySavedMsg(dest)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.state != stateChoosing {
				return m, nil
			}
			item, ok := m.list.SelectedItem().(storyItem)
			if !ok {
				return m, nil
			}
			m.state = stateDownloading
			return m, saveStory(m.client, ifarchive.Story(item))
		}

	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)

	case storiesFetchedMsg:
		m.state = stateChoosing
		m.list.SetShowStatusBar(false)
		m.list.SetShowTitle(false)
		return m, m.list.SetItems([]list.Item(msg))

	case storySavedMsg:
		m.state = stateDone
		m.savedTo = string(msg)
		return m, tea.Quit

	case failedMsg:
		m.err = msg.error
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.err != nil {
		return docStyle.Render("error: " + m.err.Error())
	}
	switch m.state {
	case stateLoading:
		return fmt.Sprintf("\n\n   %s Fetching the IF-Archive index...\n\n", m.spinner.View())
	case stateChoosing:
		return docStyle.Render(m.list.View())
	case stateDownloading:
		return fmt.Sprintf("\n\n   %s Downloading story...\n\n", m.spinner.View())
	case stateDone:
		return fmt.Sprintf("\nSaved to %s\n\nRun: zvm -rom %s\n", m.savedTo, m.savedTo)
	default:
		return ""
	}
}

func main() {
	program := tea.NewProgram(newModel())
	finalModel, err := program.Run()
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	if m, ok := finalModel.(model); ok && m.err != nil {
		os.Exit(1)
	}
}
