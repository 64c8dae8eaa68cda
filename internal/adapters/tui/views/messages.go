package views

import (
	"canvastree/internal/application/commands"
	"canvastree/internal/domain"
)

// Messages for view switching
type SwitchToBrowserMsg struct{}

type SwitchToHelpMsg struct{}

type SwitchToSearchMsg struct{}

type SwitchToTermsMsg struct{}

type SwitchToActionsMsg struct {
	Nodes []*domain.Node
}

type SwitchToDownloadMsg struct {
	Node *domain.Node
}

// StartDownloadMsg is sent once a download has been confirmed
type StartDownloadMsg struct {
	Node *domain.Node
}

// SearchSelectMsg is sent when a search result is selected
type SearchSelectMsg struct {
	Result commands.SearchResult
}

// StatusMsg carries a notification raised outside the views
type StatusMsg struct {
	Text string
	Err  bool
}

// nodeDoneMsg reports a finished node operation
type nodeDoneMsg struct {
	node *domain.Node
	verb string
	err  error
}

type treeLoadedMsg struct {
	tree     *domain.Tree
	failures []error
}

type errMsg struct {
	err error
}

// RunActionMsg is sent when a secondary action was chosen
type RunActionMsg struct {
	Nodes []*domain.Node
	Name  string
	Text  string
}
