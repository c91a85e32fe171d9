package preview

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YashMarke130105/pen-perfect-playground/internal/models"
)

func TestBuild(t *testing.T) {
	doc := models.SourceDocument{
		Markup: "<h1>Hi</h1>",
		Style:  "h1{color:red}",
		Script: `console.log("x")`,
	}

	out := Build(doc)

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, `<meta charset="UTF-8">`)
	assert.Contains(t, out, "box-sizing: border-box;")
	assert.Contains(t, out, "h1{color:red}")
	assert.Contains(t, out, "<h1>Hi</h1>")
	assert.Contains(t, out, "try {\nconsole.log(\"x\")\n} catch (error) {")
	assert.Contains(t, out, "logError.call(con, 'Error in user code:', error)")
	assert.Contains(t, out, "label.textContent = '"+DiagnosticLabel+"'")
	assert.NotContains(t, out, "innerHTML")

	t.Run("user style follows the reset", func(t *testing.T) {
		assert.Less(t, strings.Index(out, "box-sizing"), strings.Index(out, "h1{color:red}"))
	})

	t.Run("close tags in sources are escaped", func(t *testing.T) {
		out := Build(models.SourceDocument{
			Style:  "</style><b>escaped</b>",
			Script: `var s = "</SCRIPT>";`,
		})

		assert.Equal(t, 1, strings.Count(out, "</style>"))
		assert.Equal(t, 2, strings.Count(out, "</script>"), "only the reporter and the wrapper may close")
		assert.Contains(t, out, `var s = "<\/SCRIPT>";`, "case is kept")
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, out, Build(doc))
	})
}

func TestFrameHTML(t *testing.T) {
	frame := FrameHTML(models.SourceDocument{Markup: `<p class="q">"quoted"</p>`})

	assert.True(t, strings.HasPrefix(frame, `<iframe title="Preview" sandbox="allow-scripts" srcdoc="`))
	assert.NotContains(t, frame, "allow-same-origin")
	assert.Contains(t, frame, "&lt;p class=&#34;q&#34;&gt;&#34;quoted&#34;&lt;/p&gt;")
}

func TestServeHTTP(t *testing.T) {
	r := newTestRenderer(t, DefaultConfig())

	t.Run("form source", func(t *testing.T) {
		form := url.Values{"html": {"<h1>Hi</h1>"}, "css": {"h1{color:red}"}, "js": {"1+1"}}
		req := httptest.NewRequest(http.MethodPost, "/preview", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, ContentSecurityPolicy, rec.Header().Get("Content-Security-Policy"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		assert.Contains(t, rec.Body.String(), "<h1>Hi</h1>")
		assert.Contains(t, rec.Body.String(), "h1{color:red}")
	})

	t.Run("json source", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/preview", strings.NewReader(`{"markup":"<b>json</b>","style":"","script":""}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<b>json</b>")
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/preview", strings.NewReader(`{`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	})
}
