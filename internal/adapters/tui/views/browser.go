package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"canvastree/internal/adapters/tui/styles"
	"canvastree/internal/application/commands"
	"canvastree/internal/domain"
)

// BrowserKeyMap defines key bindings for the browser view
type BrowserKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Enter     key.Binding
	Mark      key.Binding
	Refresh   key.Binding
	Reload    key.Binding
	Download  key.Binding
	Favorites key.Binding
	Content   key.Binding
	Terms     key.Binding
	Order     key.Binding
	Actions   key.Binding
	Copy      key.Binding
	Search    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

var BrowserKeys = BrowserKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "fold"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "expand"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open/expand"),
	),
	Mark: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "mark"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Reload: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "reload courses"),
	),
	Download: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "download"),
	),
	Favorites: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "favorites"),
	),
	Content: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "content"),
	),
	Terms: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "terms"),
	),
	Order: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "order"),
	),
	Actions: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "actions"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy link"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// lines taken by the title, filter line, message and help line
const browserChrome = 9

// BrowserModel is the model for the course tree view. The tree and the
// filter are the source of truth; rows are recomputed after every change.
type BrowserModel struct {
	ViewState
	ctx     context.Context
	eng     commands.TreeEngine
	tree    *domain.Tree
	filter  *domain.Filter
	active  domain.ContentType
	rows    []domain.Row
	folded  map[*domain.Node]bool
	marked  map[*domain.Node]bool
	cursor  int
	offset  int
	pending int
	spinner spinner.Model
	copy    func(string) error
}

// NewBrowserModel creates a new browser model showing the active content
// type first.
func NewBrowserModel(ctx context.Context, eng commands.TreeEngine, active domain.ContentType) *BrowserModel {
	return &BrowserModel{
		ctx:     ctx,
		eng:     eng,
		active:  active,
		folded:  map[*domain.Node]bool{},
		marked:  map[*domain.Node]bool{},
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		copy:    clipboard.WriteAll,
	}
}

// Init initializes the browser
func (m *BrowserModel) Init() tea.Cmd {
	m.pending++
	return tea.Batch(m.loadTree, m.spinner.Tick)
}

// loadTree lists the courses and runs their first expansion
func (m *BrowserModel) loadTree() tea.Msg {
	result, err := commands.NewBuildTreeCommand(m.eng, domain.ContentTypes, 1).Execute(m.ctx)
	if err != nil {
		return errMsg{err}
	}
	return treeLoadedMsg{tree: result.Tree, failures: result.Failures}
}

// Update handles messages for the browser
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		m.scroll()
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case treeLoadedMsg:
		m.pending--
		m.tree = msg.tree
		if m.filter == nil {
			m.filter = domain.NewFilter(m.tree.Terms(), m.active)
		}
		m.folded = map[*domain.Node]bool{}
		m.marked = map[*domain.Node]bool{}
		m.cursor = 0
		m.refreshRows(nil)
		if len(msg.failures) > 0 {
			m.SetError(errors.Join(msg.failures...))
		}
		return m, nil

	case nodeDoneMsg:
		m.pending--
		m.refreshRows(m.selectedNode())
		if msg.err != nil {
			m.SetMessage(fmt.Sprintf("%s %s failed: %v", msg.verb, msg.node.Name(), msg.err), true)
		}
		return m, nil

	case errMsg:
		m.pending--
		m.SetError(msg.err)
		return m, nil

	case tea.KeyMsg:
		m.ClearMessage()
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *BrowserModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, BrowserKeys.Quit):
		return tea.Quit

	case key.Matches(msg, BrowserKeys.Search):
		return func() tea.Msg { return SwitchToSearchMsg{} }

	case key.Matches(msg, BrowserKeys.Help):
		return func() tea.Msg { return SwitchToHelpMsg{} }

	case key.Matches(msg, BrowserKeys.Reload):
		return m.Reload()
	}

	if m.tree == nil {
		return nil
	}

	switch {
	case key.Matches(msg, BrowserKeys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.scroll()
		}

	case key.Matches(msg, BrowserKeys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.scroll()
		}

	case key.Matches(msg, BrowserKeys.Favorites):
		m.filter.FavoriteOnly = !m.filter.FavoriteOnly
		m.refreshRows(m.selectedNode())

	case key.Matches(msg, BrowserKeys.Content):
		m.filter.Active = m.filter.Active.Next()
		m.refreshRows(nil)

	case key.Matches(msg, BrowserKeys.Order):
		m.filter.Descending = !m.filter.Descending
		m.refreshRows(m.selectedNode())

	case key.Matches(msg, BrowserKeys.Terms):
		return func() tea.Msg { return SwitchToTermsMsg{} }
	}

	node := m.selectedNode()
	if node == nil {
		return nil
	}

	switch {
	case key.Matches(msg, BrowserKeys.Left):
		if node.State() == domain.StateExpanded && !m.folded[node] && node.Len() > 0 {
			m.folded[node] = true
			m.refreshRows(node)
		} else if parent := node.Parent(); parent != nil {
			m.selectNode(parent)
		}

	case key.Matches(msg, BrowserKeys.Right):
		if m.folded[node] {
			delete(m.folded, node)
			m.refreshRows(node)
			return nil
		}
		if node.Expandable() && node.State() == domain.StateCollapsed {
			return m.run(node, "Expand", node.Expand)
		}

	case key.Matches(msg, BrowserKeys.Enter):
		if m.folded[node] {
			delete(m.folded, node)
			m.refreshRows(node)
			return nil
		}
		return m.run(node, "Open", node.Activate)

	case key.Matches(msg, BrowserKeys.Mark):
		if m.marked[node] {
			delete(m.marked, node)
		} else {
			m.marked[node] = true
		}
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.scroll()
		}

	case key.Matches(msg, BrowserKeys.Refresh):
		if node.State() == domain.StateExpanded && node.Expandable() {
			delete(m.folded, node)
			return m.run(node, "Refresh", node.Reexpand)
		}

	case key.Matches(msg, BrowserKeys.Download):
		if !commands.Downloadable(node.Kind()) {
			m.SetMessage(fmt.Sprintf("Nothing to download for %s", node.Name()), true)
			return nil
		}
		return func() tea.Msg { return SwitchToDownloadMsg{Node: node} }

	case key.Matches(msg, BrowserKeys.Actions):
		nodes := m.Marked()
		if len(nodes) == 0 {
			nodes = []*domain.Node{node}
		}
		return func() tea.Msg { return SwitchToActionsMsg{Nodes: nodes} }

	case key.Matches(msg, BrowserKeys.Copy):
		link := node.Resource().Fields().HTMLURL
		if link == "" {
			m.SetMessage(fmt.Sprintf("No link for %s", node.Name()), true)
			return nil
		}
		if err := m.copy(link); err != nil {
			m.SetError(err)
			return nil
		}
		m.SetMessage("Copied "+link, false)
	}

	return nil
}

// run executes a node operation off the UI goroutine
func (m *BrowserModel) run(node *domain.Node, verb string, fn func(context.Context) error) tea.Cmd {
	m.pending++
	op := func() tea.Msg {
		return nodeDoneMsg{node: node, verb: verb, err: fn(m.ctx)}
	}
	if m.pending == 1 {
		return tea.Batch(op, m.spinner.Tick)
	}
	return op
}

// Download starts a confirmed download into the configured folder
func (m *BrowserModel) Download(node *domain.Node) tea.Cmd {
	dir := m.eng.DownloadDir()
	return m.run(node, "Download", func(ctx context.Context) error {
		return commands.DownloadNode(ctx, m.eng, node, dir, false)
	})
}

// RunAction runs one secondary action on every node that offers it
func (m *BrowserModel) RunAction(nodes []*domain.Node, name, text string) tea.Cmd {
	var cmds []tea.Cmd
	for _, n := range nodes {
		for _, a := range n.Actions() {
			if a.Name != name {
				continue
			}
			fn := a.Run
			if a.Prompt != "" {
				fn = func(ctx context.Context) error { return a.RunText(ctx, text) }
			}
			cmds = append(cmds, m.run(n, a.Name, fn))
		}
	}
	m.marked = map[*domain.Node]bool{}
	return tea.Batch(cmds...)
}

// Reveal moves the cursor to the first visible node with the identity
func (m *BrowserModel) Reveal(id domain.Identity) bool {
	if m.tree == nil {
		return false
	}
	for _, n := range m.tree.Find(id) {
		for i, r := range m.rows {
			if r.Node == n {
				m.cursor = i
				m.scroll()
				return true
			}
		}
	}
	return false
}

func (m *BrowserModel) selectedNode() *domain.Node {
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		return m.rows[m.cursor].Node
	}
	return nil
}

func (m *BrowserModel) selectNode(n *domain.Node) {
	for i, r := range m.rows {
		if r.Node == n {
			m.cursor = i
			m.scroll()
			return
		}
	}
}

// refreshRows re-queries the filter and keeps keep selected when it is
// still visible.
func (m *BrowserModel) refreshRows(keep *domain.Node) {
	if m.tree == nil || m.filter == nil {
		return
	}
	m.filter.AddTerms(m.tree.Terms())
	m.rows = m.filter.Rows(m.tree, func(n *domain.Node) bool { return m.folded[n] })
	if keep != nil {
		for i, r := range m.rows {
			if r.Node == keep {
				m.cursor = i
				break
			}
		}
	}
	// Clamp cursor
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scroll()
}

// scroll keeps the cursor inside the visible window
func (m *BrowserModel) scroll() {
	height := m.bodyHeight(browserChrome, 5)
	if m.cursor < m.offset {
		m.offset = m.cursor
	} else if m.cursor >= m.offset+height {
		m.offset = m.cursor - height + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// View renders the browser
func (m *BrowserModel) View() string {
	if m.tree == nil {
		if m.Message != "" {
			return styles.App.Render(RenderMessage(m.Message, m.MessageErr))
		}
		return styles.App.Render(m.spinner.View() + " Loading courses...")
	}

	var b strings.Builder

	// Title
	b.WriteString(styles.Title.Render("canvastree"))
	b.WriteString("\n")
	b.WriteString(m.renderFilterLine())
	b.WriteString("\n\n")

	// Tree
	if len(m.rows) == 0 {
		b.WriteString(styles.MutedText.Render("No courses match the filter"))
		b.WriteString("\n")
	}
	end := min(m.offset+m.bodyHeight(browserChrome, 5), len(m.rows))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.rows[i], i == m.cursor))
		b.WriteString("\n")
	}

	// Message
	if m.Message != "" {
		b.WriteString("\n")
		b.WriteString(RenderMessage(m.Message, m.MessageErr))
	}

	// Help line
	b.WriteString("\n")
	b.WriteString(RenderHelpLine(
		BrowserKeys.Up, BrowserKeys.Enter, BrowserKeys.Download,
		BrowserKeys.Favorites, BrowserKeys.Content, BrowserKeys.Actions,
		BrowserKeys.Search, BrowserKeys.Help,
	))

	return styles.App.Render(b.String())
}

func (m *BrowserModel) renderFilterLine() string {
	parts := []string{m.filter.Active.String()}
	if m.filter.FavoriteOnly {
		parts = append(parts, "favorites")
	} else {
		parts = append(parts, "all courses")
	}
	if m.filter.Descending {
		parts = append(parts, "newest first")
	} else {
		parts = append(parts, "oldest first")
	}
	line := styles.Subtitle.Render(strings.Join(parts, " · "))
	if m.pending > 0 {
		line += "  " + m.spinner.View()
	}
	return line
}

func (m *BrowserModel) renderRow(row domain.Row, selected bool) string {
	node := row.Node
	indent := strings.Repeat("  ", row.Depth)

	// Prefix (expand indicator)
	var prefix string
	switch {
	case m.marked[node]:
		prefix = styles.TreeMark
	case !node.Expandable():
		prefix = styles.TreeLeaf
	case node.State() == domain.StateExpanded && !m.folded[node]:
		prefix = styles.TreeExpanded
	default:
		prefix = styles.TreeCollapsed
	}

	text := node.Name()

	var style lipgloss.Style
	switch {
	case !node.Enabled():
		style = styles.NodeDisabled
	case m.marked[node]:
		style = styles.NodeMarked
	case node.Kind() == domain.KindCourse:
		style = styles.NodeCourse.Foreground(styles.KindColor(node.Kind()))
	default:
		style = styles.NodeItem.Foreground(styles.KindColor(node.Kind()))
	}
	if selected {
		style = styles.NodeSelected
	}

	line := indent + styles.TreeBranch.Render(prefix) + style.Render(text)
	if label := node.Date().SmartLabel(); label != "" {
		line += "  " + styles.NodeDate.Render(label)
	}
	return line
}

// Marked returns the marked nodes in row order
func (m *BrowserModel) Marked() []*domain.Node {
	var nodes []*domain.Node
	for _, r := range m.rows {
		if m.marked[r.Node] {
			nodes = append(nodes, r.Node)
		}
	}
	return nodes
}

// Filter exposes the projection for the terms view
func (m *BrowserModel) Filter() *domain.Filter { return m.filter }

// Terms returns the terms of the loaded courses
func (m *BrowserModel) Terms() []domain.Term {
	if m.tree == nil {
		return nil
	}
	return m.tree.Terms()
}

// Refilter recomputes the rows after the filter changed elsewhere
func (m *BrowserModel) Refilter() {
	m.refreshRows(m.selectedNode())
}

// Reload rebuilds the tree from the course list
func (m *BrowserModel) Reload() tea.Cmd {
	m.tree = nil
	m.rows = nil
	m.cursor = 0
	m.offset = 0
	return m.Init()
}
