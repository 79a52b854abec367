package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"ethixguard/internal/knowledge"
)

// chatHistoryShown is how many exchanges the chat view keeps on screen.
const chatHistoryShown = 6

type exchange struct {
	query    string
	response string
}

// chatModel is the guidance chat. The history lives in the model and is
// dropped when the program exits.
type chatModel struct {
	kb      *knowledge.Base
	input   textinput.Model
	history []exchange
	width   int
}

func newChatModel(kb *knowledge.Base) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask about GMOs, IBSC, GEAC, containment levels, informed consent..."
	ti.CharLimit = 512
	ti.Focus()
	return chatModel{kb: kb, input: ti, width: 80}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			query := strings.TrimSpace(m.input.Value())
			if query == "" {
				return m, nil
			}
			m.history = append(m.history, exchange{query: query, response: m.kb.Respond(query)})
			m.input.Reset()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("EthixGuard guidance"))
	b.WriteString("\n\n")

	shown := m.history
	if len(shown) > chatHistoryShown {
		shown = shown[len(shown)-chatHistoryShown:]
	}
	wrap := guideStyle.Width(max(m.width-4, 20))
	for _, ex := range shown {
		fmt.Fprintf(&b, "%s %s\n", userStyle.Render("you:"), ex.query)
		b.WriteString(wrap.Render(ex.response))
		b.WriteString("\n\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("enter: ask  esc: quit"))
	b.WriteString("\n")
	return b.String()
}

func chat(kb *knowledge.Base) error {
	_, err := tea.NewProgram(newChatModel(kb)).Run()
	return err
}
