package ports

// URLOpener opens a URL in the user's browser
type URLOpener interface {
	OpenURL(rawURL string) error
}

// Viewer shows an HTML fragment to the user
type Viewer interface {
	ShowHTML(title, html string) error
}

// Confirmer asks the user a yes/no question
type Confirmer interface {
	Confirm(prompt string) bool
}
