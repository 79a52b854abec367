package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"ethixguard/internal/compliance"
	"ethixguard/internal/policy"
)

// promptModel is a bubbletea model that asks one question at a time.
// Choice questions are answered with the arrow keys (or j/k) and Enter;
// text questions with a text input. Questions whose condition does not
// hold are skipped and record their fallback answer.
type promptModel struct {
	title     string
	questions []policy.Question
	answers   compliance.AnswerSet
	idx       int
	cursor    int
	input     textinput.Model
	done      bool
}

func newPromptModel(title string, questions []policy.Question) promptModel {
	ti := textinput.New()
	ti.CharLimit = 512
	m := promptModel{
		title:     title,
		questions: questions,
		input:     ti,
	}
	m.settle()
	return m
}

// settle advances past questions that do not apply and prepares the input
// for the current one. It marks the model done after the last question.
func (m *promptModel) settle() {
	for m.idx < len(m.questions) {
		q := m.questions[m.idx]
		if q.Applies(m.answers.Get) {
			break
		}
		m.answers.Set(q.Label, q.Otherwise)
		m.idx++
	}
	if m.idx >= len(m.questions) {
		m.done = true
		return
	}
	m.cursor = 0
	m.input.Reset()
	m.input.Blur()
	if m.current().Kind == policy.KindText {
		m.input.Placeholder = "optional"
		m.input.Focus()
	}
}

func (m promptModel) current() policy.Question {
	return m.questions[m.idx]
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.done {
		return m, tea.Quit
	}
	q := m.current()

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if q.Kind == policy.KindText {
				m.answers.Set(q.Label, strings.TrimSpace(m.input.Value()))
			} else {
				m.answers.Set(q.Label, q.Choices[m.cursor])
			}
			m.idx++
			m.settle()
			if m.done {
				return m, tea.Quit
			}
			return m, textinput.Blink
		}
		if q.Kind != policy.KindText {
			switch key.String() {
			case "up", "k", "shift+tab":
				if m.cursor > 0 {
					m.cursor--
				}
			case "down", "j", "tab":
				if m.cursor < len(q.Choices)-1 {
					m.cursor++
				}
			}
			return m, nil
		}
	}

	if q.Kind != policy.KindText {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done || len(m.questions) == 0 {
		return ""
	}
	q := m.current()

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", titleStyle.Render(m.title), mutedStyle.Render(fmt.Sprintf("(%d/%d)", m.idx+1, len(m.questions))))
	b.WriteString(promptStyle.Render(q.Prompt))
	b.WriteString("\n")
	if q.Kind == policy.KindText {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	} else {
		for i, c := range q.Choices {
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("> " + c))
			} else {
				b.WriteString("  " + c)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString(mutedStyle.Render("\nenter: select  esc: cancel"))
	b.WriteString("\n")
	return b.String()
}

// promptQuestions runs the TUI and returns the answers in asking order.
func promptQuestions(title string, questions []policy.Question) (compliance.AnswerSet, error) {
	m := newPromptModel(title, questions)
	if m.done {
		return m.answers, nil
	}
	result, err := tea.NewProgram(m).Run()
	if err != nil {
		return compliance.AnswerSet{}, err
	}
	final, ok := result.(promptModel)
	if !ok || !final.done {
		return compliance.AnswerSet{}, fmt.Errorf("prompt cancelled")
	}
	return final.answers, nil
}
