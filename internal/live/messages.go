package live

import (
	"github.com/YashMarke130105/pen-perfect-playground/internal/models"
	"github.com/YashMarke130105/pen-perfect-playground/internal/preview"
)

// Client message types.
const (
	TypeSetMarkup = "set_markup"
	TypeSetStyle  = "set_style"
	TypeSetScript = "set_script"
	TypeLoad      = "load"
	TypeNew       = "new"
	TypeSave      = "save"
	TypePing      = "ping"
)

// Server message types.
const (
	TypeRender = "render"
	TypeSaved  = "saved"
	TypeLoaded = "loaded"
	TypePong   = "pong"
	TypeError  = "error"
)

// Error codes carried by error messages.
const (
	CodeUnauthenticated  = "unauthenticated"
	CodeNotFound         = "not_found"
	CodePermissionDenied = "permission_denied"
	CodeInvalid          = "invalid_argument"
	CodeInternal         = "internal"
)

// Source is the wire form of a source document.
type Source struct {
	Markup string `json:"markup"`
	Style  string `json:"style"`
	Script string `json:"script"`
}

func (s Source) document() models.SourceDocument {
	return models.SourceDocument{Markup: s.Markup, Style: s.Style, Script: s.Script}
}

func sourceOf(doc models.SourceDocument) *Source {
	return &Source{Markup: doc.Markup, Style: doc.Style, Script: doc.Script}
}

// Incoming is a message from the editor.
//
// set_* messages carry Text. load carries either a Source or the ID of a saved
// project. save carries an optional ID (update) and Title.
type Incoming struct {
	Type   string  `json:"type"`
	Text   string  `json:"text,omitempty"`
	ID     string  `json:"id,omitempty"`
	Title  string  `json:"title,omitempty"`
	Source *Source `json:"source,omitempty"`
}

// Outgoing is a message to the editor. Only the fields of its type are set.
type Outgoing struct {
	Type string `json:"type"`

	// render
	Document    string               `json:"document,omitempty"`
	Body        string               `json:"body,omitempty"`
	Diagnostics []preview.Diagnostic `json:"diagnostics,omitempty"`
	Console     []preview.LogEntry   `json:"console,omitempty"`
	TimedOut    bool                 `json:"timedOut,omitempty"`

	// saved, loaded
	ID        string  `json:"id,omitempty"`
	Title     string  `json:"title,omitempty"`
	UpdatedAt int64   `json:"updatedAt,omitempty"`
	Source    *Source `json:"source,omitempty"`

	// error
	Code     string `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func renderMessage(view *preview.View) Outgoing {
	return Outgoing{
		Type:        TypeRender,
		Document:    view.Source,
		Body:        view.Body,
		Diagnostics: view.Diagnostics,
		Console:     view.Console,
		TimedOut:    view.TimedOut,
	}
}

func errorMessage(code, message string) Outgoing {
	return Outgoing{Type: TypeError, Code: code, Message: message}
}
