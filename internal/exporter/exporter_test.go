package exporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YashMarke130105/pen-perfect-playground/internal/models"
)

func TestExport(t *testing.T) {
	doc := models.SourceDocument{
		Markup: `<h1 class="title">Hi</h1>`,
		Style:  "h1 { color: red; }",
		Script: `document.querySelector("h1").textContent = "Hello";`,
	}

	file := Export("My Page", doc)

	assert.Equal(t, "my_page.html", file.Name)
	assert.Equal(t, "text/html", file.ContentType)

	content := string(file.Content)
	assert.True(t, strings.HasPrefix(content, "<!DOCTYPE html>\n<html lang=\"en\">"))
	assert.Contains(t, content, `<meta charset="UTF-8">`)
	assert.Contains(t, content, `<meta name="viewport" content="width=device-width, initial-scale=1.0">`)
	assert.Contains(t, content, "<title>My Page</title>")

	t.Run("parsed sections hold the sources verbatim", func(t *testing.T) {
		page, err := goquery.NewDocumentFromReader(bytes.NewReader(file.Content))
		require.NoError(t, err)

		body, err := page.Find("body").Html()
		require.NoError(t, err)
		assert.Contains(t, body, doc.Markup)
		assert.Contains(t, page.Find("head style").Text(), doc.Style)
		assert.Contains(t, page.Find("body script").Text(), doc.Script)
		assert.Equal(t, "My Page", page.Find("title").Text())
	})

	t.Run("title is escaped", func(t *testing.T) {
		file := Export(`<script>alert("x")</script>`, models.SourceDocument{})
		assert.Contains(t, string(file.Content), "<title>&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;</title>")
	})

	t.Run("closing tags in sources stay inside their elements", func(t *testing.T) {
		doc := models.SourceDocument{
			Markup: "<p>kept</p>",
			Style:  `p::after { content: "</style>"; }`,
			Script: `var s = "</script><b>x</b>"; var t = "</SCRIPT>";`,
		}
		file := Export("Tags", doc)

		page, err := goquery.NewDocumentFromReader(bytes.NewReader(file.Content))
		require.NoError(t, err)
		assert.Equal(t, 1, page.Find("head style").Length())
		assert.Equal(t, 1, page.Find("script").Length())
		assert.Equal(t, 0, page.Find("b").Length(), "script text must not leak into the body")
		assert.Contains(t, page.Find("script").Text(), `var s = "<\/script><b>x</b>"; var t = "<\/SCRIPT>";`)

		title, imported, err := Import(bytes.NewReader(file.Content))
		require.NoError(t, err)
		assert.Equal(t, "Tags", title)
		assert.Equal(t, doc, imported)
	})

	t.Run("empty sources", func(t *testing.T) {
		file := Export("Empty", models.SourceDocument{})
		_, err := goquery.NewDocumentFromReader(bytes.NewReader(file.Content))
		assert.NoError(t, err)
	})
}

func TestFileName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{title: "My Page", want: "my_page.html"},
		{title: "Untitled Project", want: "untitled_project.html"},
		{title: "", want: "untitled_project.html"},
		{title: "v2.0 (final)!", want: "v2_0__final__.html"},
		{title: "ABC123", want: "abc123.html"},
		{title: "über", want: "_ber.html"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.title))
		})
	}
}

func TestImport(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		doc := models.SourceDocument{
			Markup: "<h1>Hi</h1>\n<p>there</p>",
			Style:  "h1{color:red}",
			Script: `console.log("hi");`,
		}

		title, imported, err := Import(bytes.NewReader(Export("Round Trip", doc).Content))
		require.NoError(t, err)

		assert.Equal(t, "Round Trip", title)
		assert.Equal(t, doc, imported)
	})

	t.Run("hand-written page", func(t *testing.T) {
		page := `<!DOCTYPE html>
<html>
<head>
<title> Demo </title>
<style>body { margin: 0; }</style>
<style>p { color: blue; }</style>
<script src="https://cdn.example.com/lib.js"></script>
<script>var a = 1;</script>
</head>
<body><p>text</p><script>var b = 2;</script></body>
</html>`

		title, doc, err := Import(strings.NewReader(page))
		require.NoError(t, err)

		assert.Equal(t, "Demo", title)
		assert.Equal(t, "body { margin: 0; }\n\np { color: blue; }", doc.Style)
		assert.Equal(t, "var a = 1;\n\nvar b = 2;", doc.Script)
		assert.Equal(t, "<p>text</p>", doc.Markup)
	})

	t.Run("rejects non-html", func(t *testing.T) {
		_, _, err := Import(strings.NewReader(`{"markup": "<h1>nope</h1>"}`))
		assert.ErrorIs(t, err, ErrNotHTML)

		_, _, err = Import(bytes.NewReader([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}))
		assert.ErrorIs(t, err, ErrNotHTML)
	})

	t.Run("rejects oversized files", func(t *testing.T) {
		big := "<!DOCTYPE html><html><body>" + strings.Repeat("a", MaxImportSize) + "</body></html>"
		_, _, err := Import(strings.NewReader(big))
		assert.ErrorIs(t, err, ErrTooLarge)
	})
}
