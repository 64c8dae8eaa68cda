package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"canvastree/internal/adapters/tui/styles"
	"canvastree/internal/domain"
)

// ListKeyMap defines key bindings for the action and term lists
type ListKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Toggle key.Binding
	Cancel key.Binding
}

var ListKeys = ListKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "run"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "enter"),
		key.WithHelp("space", "toggle"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "q"),
		key.WithHelp("esc", "back"),
	),
}

// ActionsModel lists the secondary actions of the selected nodes. With
// more than one node only actions that apply to a selection are offered.
type ActionsModel struct {
	ViewState
	nodes     []*domain.Node
	actions   []domain.Action
	paginator *Paginator
	input     textinput.Model
	prompting bool
}

// NewActionsModel creates the action list view
func NewActionsModel() *ActionsModel {
	input := textinput.New()
	input.CharLimit = 200
	return &ActionsModel{
		paginator: NewPaginator(10),
		input:     input,
	}
}

// SetNodes loads the actions offered by the first node
func (m *ActionsModel) SetNodes(nodes []*domain.Node) {
	m.nodes = nodes
	m.actions = nil
	m.prompting = false
	m.input.Blur()
	m.ClearMessage()
	if len(nodes) == 0 {
		return
	}
	for _, a := range nodes[0].Actions() {
		if len(nodes) > 1 && !a.Multi {
			continue
		}
		m.actions = append(m.actions, a)
	}
	m.paginator.Reset()
	m.paginator.SetTotal(len(m.actions))
}

// Init initializes the view
func (m *ActionsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the action list
func (m *ActionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.prompting {
		return m, m.updatePrompt(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, ListKeys.Cancel):
		return m, func() tea.Msg { return SwitchToBrowserMsg{} }
	case key.Matches(keyMsg, ListKeys.Up):
		m.paginator.CursorUp()
	case key.Matches(keyMsg, ListKeys.Down):
		m.paginator.CursorDown()
	case key.Matches(keyMsg, ListKeys.Select):
		if len(m.actions) == 0 {
			return m, nil
		}
		a := m.actions[m.paginator.Cursor()]
		if a.Prompt != "" {
			m.prompting = true
			m.input.Placeholder = a.Prompt
			m.input.SetValue("")
			return m, m.input.Focus()
		}
		return m, m.choose(a.Name, "")
	}
	return m, nil
}

func (m *ActionsModel) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompting = false
		m.input.Blur()
		return nil
	case tea.KeyEnter:
		a := m.actions[m.paginator.Cursor()]
		m.prompting = false
		m.input.Blur()
		return m.choose(a.Name, m.input.Value())
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *ActionsModel) choose(name, text string) tea.Cmd {
	nodes := m.nodes
	return func() tea.Msg {
		return RunActionMsg{Nodes: nodes, Name: name, Text: text}
	}
}

// View renders the action list
func (m *ActionsModel) View() string {
	v := NewViewBuilder().Title("Actions")
	if len(m.nodes) == 1 {
		v.Line(RenderNodeInfo(m.nodes[0], "Act on")).BlankLine()
	} else {
		v.Subtitle(fmt.Sprintf("%d marked nodes", len(m.nodes)))
	}

	if len(m.actions) == 0 {
		v.Muted("No actions available").BlankLine()
		return v.Help(ListKeys.Cancel).String()
	}

	start, end := m.paginator.VisibleRange()
	for i := start; i < end; i++ {
		name := m.actions[i].Name
		if m.actions[i].Prompt != "" {
			name += "…"
		}
		if i == m.paginator.Cursor() {
			v.Line(styles.NodeSelected.Render(name))
		} else {
			v.Line(name)
		}
	}
	if m.paginator.TotalPages() > 1 {
		v.Muted(fmt.Sprintf("page %d/%d", m.paginator.CurrentPage(), m.paginator.TotalPages()))
	}
	v.BlankLine()

	if m.prompting {
		v.Line(styles.InputLabel.Render(m.input.Placeholder)).
			Line(styles.InputFocused.Render(m.input.View())).
			BlankLine()
	}

	return v.Help(ListKeys.Up, ListKeys.Down, ListKeys.Select, ListKeys.Cancel).String()
}

// TermsModel toggles which terms the browser shows
type TermsModel struct {
	ViewState
	filter    *domain.Filter
	terms     []domain.Term
	paginator *Paginator
}

// NewTermsModel creates the term list view
func NewTermsModel() *TermsModel {
	return &TermsModel{paginator: NewPaginator(15)}
}

// SetTerms loads the terms of the loaded courses
func (m *TermsModel) SetTerms(filter *domain.Filter, terms []domain.Term) {
	m.filter = filter
	m.terms = terms
	m.paginator.Reset()
	m.paginator.SetTotal(len(terms))
}

// Init initializes the view
func (m *TermsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the term list
func (m *TermsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, ListKeys.Cancel):
		return m, func() tea.Msg { return SwitchToBrowserMsg{} }
	case key.Matches(keyMsg, ListKeys.Up):
		m.paginator.CursorUp()
	case key.Matches(keyMsg, ListKeys.Down):
		m.paginator.CursorDown()
	case key.Matches(keyMsg, ListKeys.Toggle):
		if m.filter != nil && len(m.terms) > 0 {
			m.filter.ToggleTerm(m.terms[m.paginator.Cursor()].ID)
		}
	}
	return m, nil
}

// View renders the term list
func (m *TermsModel) View() string {
	v := NewViewBuilder().Title("Terms")
	if len(m.terms) == 0 {
		v.Muted("No terms loaded").BlankLine()
		return v.Help(ListKeys.Cancel).String()
	}

	start, end := m.paginator.VisibleRange()
	for i := start; i < end; i++ {
		t := m.terms[i]
		box := "[ ] "
		if m.filter != nil && m.filter.TermVisible(t.ID) {
			box = "[x] "
		}
		line := box + termName(t)
		if i == m.paginator.Cursor() {
			line = styles.NodeSelected.Render(line)
		}
		v.Line(line)
	}
	v.BlankLine()
	return v.Help(ListKeys.Up, ListKeys.Down, ListKeys.Toggle, ListKeys.Cancel).String()
}

func termName(t domain.Term) string {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Sprintf("Term %d", t.ID)
	}
	return t.Name
}
