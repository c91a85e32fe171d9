package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/YashMarke130105/pen-perfect-playground/internal/models"
	"github.com/YashMarke130105/pen-perfect-playground/internal/preview"
	v1 "github.com/YashMarke130105/pen-perfect-playground/pkg/api/v1"
)

var plainText = bluemonday.StrictPolicy()

// CleanText strips markup from user-supplied display text. The policy
// escapes what it keeps, so the result is unescaped back to plain text.
func CleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(s)))
}

// CleanTitle is CleanText with the default project title as fallback.
func CleanTitle(s string) string {
	if title := CleanText(s); title != "" {
		return title
	}
	return models.DefaultTitle
}

func sourceFromProto(src *v1.Source) models.SourceDocument {
	return models.SourceDocument{
		Markup: src.GetMarkup(),
		Style:  src.GetStyle(),
		Script: src.GetScript(),
	}
}

func sourceToProto(doc models.SourceDocument) *v1.Source {
	return &v1.Source{
		Markup: doc.Markup,
		Style:  doc.Style,
		Script: doc.Script,
	}
}

func accountToProto(user *models.User) *v1.Account {
	return &v1.Account{
		Id:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
}

func projectToProto(p *models.Project, author string) *v1.Project {
	return &v1.Project{
		Id:             p.ID,
		Title:          p.Title,
		Source:         sourceToProto(p.Source),
		OwnerId:        p.OwnerID,
		AuthorUsername: author,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func viewToProto(view *preview.View) *v1.RenderResponse {
	resp := &v1.RenderResponse{
		Document:    view.Document,
		Body:        view.Body,
		Text:        view.Text,
		Diagnostics: make([]*v1.Diagnostic, len(view.Diagnostics)),
		Console:     make([]*v1.ConsoleEntry, len(view.Console)),
		TimedOut:    view.TimedOut,
		DurationMs:  view.Duration.Milliseconds(),
	}
	for i, d := range view.Diagnostics {
		resp.Diagnostics[i] = &v1.Diagnostic{Kind: string(d.Kind), Message: d.Message, Origin: d.Origin}
	}
	for i, entry := range view.Console {
		resp.Console[i] = &v1.ConsoleEntry{Level: entry.Level, Message: entry.Message}
	}
	return resp
}
