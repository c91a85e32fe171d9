// Package exporter converts playground sources to and from standalone HTML files.
package exporter

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"

	"github.com/YashMarke130105/pen-perfect-playground/internal/models"
	"github.com/YashMarke130105/pen-perfect-playground/internal/preview"
)

const (
	// ContentType of every exported file.
	ContentType = "text/html"
	// MaxImportSize caps uploaded files.
	MaxImportSize = 5 << 20

	defaultFileName = "untitled_project.html"
)

var (
	ErrNotHTML  = errors.New("file is not an HTML document")
	ErrTooLarge = errors.New("file exceeds the import size limit")
)

// File is an exported standalone document.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

var (
	unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9]`)
	escapedCloseTag = regexp.MustCompile(`(?i)<\\/(script|style)`)
)

// unescapeCloseTags reverses the escaping Export applies, keeping the tag's case.
func unescapeCloseTags(s string) string {
	return escapedCloseTag.ReplaceAllStringFunc(s, func(tag string) string {
		return "</" + tag[3:]
	})
}

// Export renders doc as a single self-contained HTML file. Sources are
// written verbatim except for closing tags inside the style and script,
// escaped the way the preview escapes them; the title is HTML-escaped.
func Export(title string, doc models.SourceDocument) File {
	content := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>%s</title>
  <style>
    %s
  </style>
</head>
<body>
  %s
  <script>
    %s
  </script>
</body>
</html>`, html.EscapeString(title), preview.EscapeStyle(doc.Style), doc.Markup, preview.EscapeScript(doc.Script))

	return File{
		Name:        FileName(title),
		ContentType: ContentType,
		Content:     []byte(content),
	}
}

// FileName derives the download name from a project title: every character
// outside [a-zA-Z0-9] becomes an underscore and the result is lower-cased.
func FileName(title string) string {
	if title == "" {
		return defaultFileName
	}
	return strings.ToLower(unsafeFileChars.ReplaceAllString(title, "_")) + ".html"
}

// Import reads a standalone HTML file back into a title and sources.
// Styles come from the head, scripts from every inline script element, and
// the markup is the body without inline scripts.
func Import(r io.Reader) (string, models.SourceDocument, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImportSize+1))
	if err != nil {
		return "", models.SourceDocument{}, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > MaxImportSize {
		return "", models.SourceDocument{}, ErrTooLarge
	}
	if mtype := mimetype.Detect(data); !mtype.Is(ContentType) {
		return "", models.SourceDocument{}, fmt.Errorf("%w: detected %s", ErrNotHTML, mtype.String())
	}

	page, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", models.SourceDocument{}, fmt.Errorf("failed to parse file: %w", err)
	}

	title := strings.TrimSpace(page.Find("title").First().Text())

	var styles []string
	page.Find("head style").Each(func(_ int, s *goquery.Selection) {
		if css := strings.TrimSpace(s.Text()); css != "" {
			styles = append(styles, css)
		}
	})

	var scripts []string
	inline := page.Find("script").FilterFunction(func(_ int, s *goquery.Selection) bool {
		_, external := s.Attr("src")
		return !external
	})
	inline.Each(func(_ int, s *goquery.Selection) {
		if js := strings.TrimSpace(s.Text()); js != "" {
			scripts = append(scripts, js)
		}
	})
	inline.Remove()

	markup, err := page.Find("body").First().Html()
	if err != nil {
		return "", models.SourceDocument{}, fmt.Errorf("failed to serialize body: %w", err)
	}

	return title, models.SourceDocument{
		Markup: strings.TrimSpace(markup),
		Style:  unescapeCloseTags(strings.Join(styles, "\n\n")),
		Script: unescapeCloseTags(strings.Join(scripts, "\n\n")),
	}, nil
}
