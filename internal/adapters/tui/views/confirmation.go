package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"canvastree/internal/adapters/tui/styles"
	"canvastree/internal/domain"
)

// ConfirmKeyMap defines key bindings for confirmation views
type ConfirmKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultConfirmKeys returns the default confirmation key bindings
var DefaultConfirmKeys = ConfirmKeyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
}

// ConfirmationModel provides a base for confirmation-style views
type ConfirmationModel struct {
	ViewState
	TargetNode *domain.Node
	Keys       ConfirmKeyMap
}

// NewConfirmationModel creates a new confirmation model with default keys
func NewConfirmationModel() ConfirmationModel {
	return ConfirmationModel{
		Keys: DefaultConfirmKeys,
	}
}

// SetTarget sets the target node for the confirmation
func (m *ConfirmationModel) SetTarget(node *domain.Node) {
	m.TargetNode = node
}

// HandleKeyMsg processes key messages for confirmation views.
// Returns (handled, cmd) where handled is true if the key was processed.
func (m *ConfirmationModel) HandleKeyMsg(msg tea.KeyMsg, onConfirm, onCancel func() tea.Msg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Cancel):
		return true, func() tea.Msg { return onCancel() }
	case key.Matches(msg, m.Keys.Confirm):
		return true, func() tea.Msg { return onConfirm() }
	}
	return false, nil
}

// RenderConfirmPrompt renders the standard confirmation prompt
func RenderConfirmPrompt(question string) string {
	var b strings.Builder
	b.WriteString(question)
	b.WriteString(" ")
	b.WriteString(styles.HelpKey.Render("y"))
	b.WriteString(styles.HelpDesc.Render(" to confirm, "))
	b.WriteString(styles.HelpKey.Render("n"))
	b.WriteString(styles.HelpDesc.Render(" to cancel"))
	return b.String()
}

// DownloadModel asks before downloading a node into the download folder
type DownloadModel struct {
	ConfirmationModel
	dir string
}

// NewDownloadModel creates the download confirmation view
func NewDownloadModel() *DownloadModel {
	return &DownloadModel{ConfirmationModel: NewConfirmationModel()}
}

// SetTarget sets the node and the folder it will be written to
func (m *DownloadModel) SetTarget(node *domain.Node, dir string) {
	m.ConfirmationModel.SetTarget(node)
	m.dir = dir
}

// Init initializes the view
func (m *DownloadModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the download confirmation
func (m *DownloadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		node := m.TargetNode
		_, cmd := m.HandleKeyMsg(msg,
			func() tea.Msg { return StartDownloadMsg{Node: node} },
			func() tea.Msg { return SwitchToBrowserMsg{} },
		)
		return m, cmd
	}
	return m, nil
}

// View renders the confirmation
func (m *DownloadModel) View() string {
	question := "Download this item?"
	if m.TargetNode != nil && m.TargetNode.Kind() != domain.KindFile && m.TargetNode.Kind() != domain.KindLecture {
		question = "Download its contents?"
	}
	return NewViewBuilder().
		Title("Download").
		Line(RenderNodeInfo(m.TargetNode, "Download")).
		BlankLine().
		Line(RenderLabelValue("Into", m.dir)).
		Muted("Existing files and folders are skipped.").
		BlankLine().
		Line(RenderConfirmPrompt(question)).
		String()
}
