package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"canvastree/internal/adapters/tui/styles"
	"canvastree/internal/application/commands"
	"canvastree/internal/ports"
)

// SearchKeyMap defines key bindings for the search view
type SearchKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

var SearchKeys = SearchKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "reveal"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

// SearchModel searches the nodes discovered so far in this run
type SearchModel struct {
	ViewState
	ctx       context.Context
	index     ports.NodeIndex
	input     textinput.Model
	results   []commands.SearchResult
	paginator *Paginator
}

// NewSearchModel creates a new search view model
func NewSearchModel(ctx context.Context, index ports.NodeIndex) *SearchModel {
	input := textinput.New()
	input.Placeholder = "Search loaded nodes..."
	input.Focus()

	return &SearchModel{
		ctx:       ctx,
		index:     index,
		input:     input,
		paginator: NewPaginator(10),
	}
}

// Init initializes the search view
func (m *SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

// Reset resets the search view
func (m *SearchModel) Reset() {
	m.input.SetValue("")
	m.results = nil
	m.paginator.Reset()
	m.input.Focus()
}

// Update handles messages for the search view
func (m *SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchResultsMsg:
		if msg.query != m.input.Value() {
			return m, nil
		}
		m.results = msg.results
		m.paginator.Reset()
		m.paginator.SetTotal(len(m.results))
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, SearchKeys.Cancel):
			return m, func() tea.Msg {
				return SwitchToBrowserMsg{}
			}

		case key.Matches(msg, SearchKeys.Up):
			m.paginator.CursorUp()
			return m, nil

		case key.Matches(msg, SearchKeys.Down):
			m.paginator.CursorDown()
			return m, nil

		case key.Matches(msg, SearchKeys.Select):
			if len(m.results) > 0 {
				result := m.results[m.paginator.Cursor()]
				return m, func() tea.Msg {
					return SearchSelectMsg{Result: result}
				}
			}
			return m, nil
		}
	}

	// Update input
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	// Trigger search on input change
	query := m.input.Value()
	if len(query) >= 2 {
		return m, tea.Batch(cmd, m.search(query))
	} else if len(query) == 0 {
		m.results = nil
		m.paginator.Reset()
	}

	return m, cmd
}

func (m *SearchModel) search(query string) tea.Cmd {
	return func() tea.Msg {
		results, err := commands.NewSearchCommand(m.index, query).Execute(m.ctx)
		if err != nil {
			return searchResultsMsg{query: query}
		}
		return searchResultsMsg{query: query, results: results}
	}
}

type searchResultsMsg struct {
	query   string
	results []commands.SearchResult
}

// View renders the search view
func (m *SearchModel) View() string {
	var b strings.Builder

	// Title
	b.WriteString(styles.Title.Render("Search"))
	b.WriteString("\n\n")

	// Search input
	b.WriteString(styles.InputFocused.Render(m.input.View()))
	b.WriteString("\n\n")

	// Results
	if len(m.results) == 0 {
		if len(m.input.Value()) >= 2 {
			b.WriteString(styles.MutedText.Render("No results found"))
		} else {
			b.WriteString(styles.MutedText.Render("Type at least 2 characters to search"))
		}
	} else {
		b.WriteString(styles.Subtitle.Render(fmt.Sprintf("%d results", len(m.results))))
		b.WriteString("\n\n")

		start, end := m.paginator.VisibleRange()
		for i := start; i < end; i++ {
			b.WriteString(m.renderResult(m.results[i], i == m.paginator.Cursor()))
			b.WriteString("\n")
		}

		if m.paginator.TotalPages() > 1 {
			b.WriteString(styles.MutedText.Render(fmt.Sprintf("page %d/%d", m.paginator.CurrentPage(), m.paginator.TotalPages())))
		}
	}

	b.WriteString("\n\n")

	// Help
	b.WriteString(RenderHelpLine(SearchKeys.Up, SearchKeys.Down, SearchKeys.Select, SearchKeys.Cancel))

	return styles.App.Render(b.String())
}

func (m *SearchModel) renderResult(result commands.SearchResult, selected bool) string {
	text := fmt.Sprintf("[%s] %s", strings.ToUpper(result.Kind.String()), result.Name)

	if selected {
		return styles.NodeSelected.Render(text)
	}

	return text
}
