package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"canvastree/internal/adapters/tui/views"
	"canvastree/internal/application/commands"
	"canvastree/internal/domain"
	"canvastree/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewBrowser ViewState = iota
	ViewHelp
	ViewSearch
	ViewActions
	ViewTerms
	ViewDownload
)

// App is the main TUI application model
type App struct {
	eng    commands.TreeEngine
	status *StatusHook

	state    ViewState
	browser  *views.BrowserModel
	help     *views.HelpModel
	search   *views.SearchModel
	actions  *views.ActionsModel
	terms    *views.TermsModel
	download *views.DownloadModel

	width  int
	height int
}

// NewApp creates a new TUI application. Notifications logged through the
// status hook show up under the tree.
func NewApp(ctx context.Context, eng commands.TreeEngine, index ports.NodeIndex, active domain.ContentType, status *StatusHook) *App {
	return &App{
		eng:      eng,
		status:   status,
		state:    ViewBrowser,
		browser:  views.NewBrowserModel(ctx, eng, active),
		help:     views.NewHelpModel(),
		search:   views.NewSearchModel(ctx, index),
		actions:  views.NewActionsModel(),
		terms:    views.NewTermsModel(),
		download: views.NewDownloadModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.browser.Init(), a.status.Wait())
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.browser.Update(msg)
		a.help.SetSize(msg.Width, msg.Height)
		a.search.SetSize(msg.Width, msg.Height)
		a.actions.SetSize(msg.Width, msg.Height)
		a.terms.SetSize(msg.Width, msg.Height)
		a.download.SetSize(msg.Width, msg.Height)
		return a, nil

	case views.StatusMsg:
		a.browser.SetMessage(msg.Text, msg.Err)
		return a, a.status.Wait()

	// View switching messages
	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToSearchMsg:
		a.state = ViewSearch
		a.search.Reset()
		return a, a.search.Init()

	case views.SwitchToActionsMsg:
		a.state = ViewActions
		a.actions.SetNodes(msg.Nodes)
		return a, nil

	case views.SwitchToTermsMsg:
		a.state = ViewTerms
		a.terms.SetTerms(a.browser.Filter(), a.browser.Terms())
		return a, nil

	case views.SwitchToDownloadMsg:
		a.state = ViewDownload
		a.download.SetTarget(msg.Node, a.eng.DownloadDir())
		return a, nil

	case views.SwitchToBrowserMsg:
		a.state = ViewBrowser
		a.browser.Refilter()
		return a, nil

	// Results of the secondary views
	case views.StartDownloadMsg:
		a.state = ViewBrowser
		a.browser.SetMessage(fmt.Sprintf("Downloading %s...", msg.Node.Name()), false)
		return a, a.browser.Download(msg.Node)

	case views.RunActionMsg:
		a.state = ViewBrowser
		return a, a.browser.RunAction(msg.Nodes, msg.Name, msg.Text)

	case views.SearchSelectMsg:
		a.state = ViewBrowser
		if !a.browser.Reveal(domain.Identity{Kind: msg.Result.Kind, Key: msg.Result.Key}) {
			a.browser.SetMessage(fmt.Sprintf("%s is hidden by the filter or folded", msg.Result.Name), true)
		}
		return a, nil
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewBrowser:
		_, cmd = a.browser.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	case ViewSearch:
		_, cmd = a.search.Update(msg)
	case ViewActions:
		_, cmd = a.actions.Update(msg)
	case ViewTerms:
		_, cmd = a.terms.Update(msg)
	case ViewDownload:
		_, cmd = a.download.Update(msg)
	}

	// The browser keeps its spinner and node results while another view is open
	if a.state != ViewBrowser && !isKey(msg) {
		_, bcmd := a.browser.Update(msg)
		cmd = tea.Batch(cmd, bcmd)
	}

	return a, cmd
}

func isKey(msg tea.Msg) bool {
	_, ok := msg.(tea.KeyMsg)
	return ok
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewHelp:
		return a.help.View()
	case ViewSearch:
		return a.search.View()
	case ViewActions:
		return a.actions.View()
	case ViewTerms:
		return a.terms.View()
	case ViewDownload:
		return a.download.View()
	default:
		return a.browser.View()
	}
}
