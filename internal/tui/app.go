package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/alex-chat/backend/internal/model/chat"
	"github.com/zhouzirui/alex-chat/backend/internal/service/conversation"
)

const inputHeight = 3

// TranscriptChangedMsg asks the model to redraw from the controller.
type TranscriptChangedMsg struct{}

type replyDoneMsg struct{}

// Model renders one conversation: a scrolling message list above a multiline input.
type Model struct {
	ctrl     *conversation.Controller
	title    string
	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	inflight int
	width    int
	height   int
}

// NewModel builds the screen for ctrl.
func NewModel(ctrl *conversation.Controller, title, placeholder string) Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = dimStyle

	m := Model{
		ctrl:     ctrl,
		title:    title,
		viewport: viewport.New(80, 20),
		input:    ta,
		spinner:  sp,
		width:    80,
		height:   30,
	}
	m.resize()
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			text := m.input.Value()
			if strings.TrimSpace(text) == "" {
				return m, nil
			}
			m.input.Reset()
			m.inflight++
			return m, tea.Batch(submit(m.ctrl, text), m.spinner.Tick)
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case TranscriptChangedMsg:
		m.refresh()
		return m, nil

	case replyDoneMsg:
		if m.inflight > 0 {
			m.inflight--
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if m.inflight == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.ctrl.SetPendingInput(m.input.Value())

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	status := dimStyle.Render("enter send · alt+enter newline · esc quit")
	if m.inflight > 0 {
		status = m.spinner.View() + dimStyle.Render(" "+m.title+" is typing...")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.title),
		m.viewport.View(),
		inputBorder.Render(m.input.View()),
		status,
	)
}

// submit runs the blocking turn off the event loop. The user entry shows up
// through TranscriptChangedMsg before the reply arrives.
func submit(ctrl *conversation.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		ctrl.Submit(context.Background(), text)
		return replyDoneMsg{}
	}
}

func (m *Model) resize() {
	// title + input border + status line
	chrome := 1 + inputHeight + 2 + 1
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-chrome, 3)
	m.input.SetWidth(max(m.width-2, 10))
}

func (m *Model) refresh() {
	m.viewport.SetContent(renderEntries(m.ctrl.Display(), m.width))
	m.viewport.GotoBottom()
}

func renderEntries(entries []chat.DisplayEntry, width int) string {
	bubbleWidth := max(width*3/4, 20)

	var b strings.Builder
	for i, entry := range entries {
		if i > 0 {
			b.WriteString("\n\n")
		}

		if entry.Alignment == chat.AlignRight {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble(userBubble, entry.Text, bubbleWidth)))
			continue
		}

		if entry.SpeakerLabel != "" {
			b.WriteString(nameStyle.Render(entry.SpeakerLabel))
			b.WriteString("\n")
		}
		b.WriteString(bubble(assistantBubble, entry.Text, bubbleWidth))
	}
	return b.String()
}

// bubble wraps text at maxWidth but keeps short messages tight.
func bubble(style lipgloss.Style, text string, maxWidth int) string {
	w := lipgloss.Width(text) + style.GetHorizontalFrameSize()
	return style.Width(min(w, maxWidth)).Render(text)
}
