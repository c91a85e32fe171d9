package preview

import (
	"html"
	"regexp"
	"strings"
	"text/template"

	"github.com/YashMarke130105/pen-perfect-playground/internal/models"
)

// Markers on the scripts Build injects, so the headless renderer can tell
// them apart from scripts the user wrote into the markup.
const (
	attrRole     = "data-canvas"
	roleReporter = "reporter"
	roleMain     = "main"

	// DiagnosticClass is the class of the inline error block.
	DiagnosticClass = "canvas-error"
	// DiagnosticStyle is the inline style of the error block.
	DiagnosticStyle = "padding: 20px; background: #fee; border: 1px solid #faa; color: #c00; margin: 10px; border-radius: 4px;"
	// DiagnosticLabel precedes the error message inside the block.
	DiagnosticLabel = "JavaScript Error:"
)

const baseStyle = `* {
  margin: 0;
  padding: 0;
  box-sizing: border-box;
}
body {
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
}`

// reporterScript runs before the body. It reports errors the try/catch
// around the user script cannot see: syntax errors, errors in other inline
// scripts and errors thrown later from timers or event handlers.
// The DOM and console functions it needs are captured up front, so a user
// script that overwrites them still gets its error shown.
const reporterScript = `(function () {
  var doc = document;
  var createElement = doc.createElement;
  var createTextNode = doc.createTextNode;
  var con = typeof console !== 'undefined' ? console : null;
  var logError = con && con.error;
  function show(message) {
    var box = createElement.call(doc, 'div');
    box.className = '` + DiagnosticClass + `';
    box.setAttribute('style', '` + DiagnosticStyle + `');
    var label = createElement.call(doc, 'strong');
    label.textContent = '` + DiagnosticLabel + `';
    box.appendChild(label);
    box.appendChild(createTextNode.call(doc, ' ' + message));
    (doc.body || doc.documentElement).appendChild(box);
  }
  window.__canvasReport = function (error) {
    show(error && error.message !== undefined ? error.message : String(error));
    if (logError) {
      try {
        logError.call(con, 'Error in user code:', error);
      } catch (ignored) {}
    }
  };
  window.addEventListener('error', function (event) {
    show(event.message);
  });
})();`

var documentTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>
{{.BaseStyle}}
{{.Style}}
</style>
<script ` + attrRole + `="` + roleReporter + `">
{{.Reporter}}
</script>
</head>
<body>
{{.Markup}}
<script ` + attrRole + `="` + roleMain + `">
try {
{{.Script}}
} catch (error) {
  window.__canvasReport(error);
}
</script>
</body>
</html>
`))

type documentData struct {
	BaseStyle string
	Style     string
	Reporter  string
	Markup    string
	Script    string
}

var (
	closeScript = regexp.MustCompile(`(?i)</script`)
	closeStyle  = regexp.MustCompile(`(?i)</style`)
)

// EscapeScript keeps script from closing its script element early.
// "<\/script" is the same string to JavaScript.
func EscapeScript(script string) string {
	return closeScript.ReplaceAllStringFunc(script, escapeCloseTag)
}

// EscapeStyle keeps style from closing its style element early.
// "<\/style" is the same token to CSS.
func EscapeStyle(style string) string {
	return closeStyle.ReplaceAllStringFunc(style, escapeCloseTag)
}

// escapeCloseTag turns "</tag" into "<\/tag", keeping the tag's case.
func escapeCloseTag(tag string) string {
	return `<\` + tag[1:]
}

// Build assembles the complete preview document for doc.
// Markup is inserted verbatim; malformed markup is left to the HTML parser.
// Closing tags inside the style and script are escaped so user code cannot
// terminate the wrapper early.
func Build(doc models.SourceDocument) string {
	var b strings.Builder
	// Execute only fails on writer errors, and strings.Builder never returns one.
	_ = documentTemplate.Execute(&b, documentData{
		BaseStyle: baseStyle,
		Style:     EscapeStyle(doc.Style),
		Reporter:  reporterScript,
		Markup:    doc.Markup,
		Script:    EscapeScript(doc.Script),
	})
	return b.String()
}

// FrameHTML embeds the preview of doc in an iframe through srcdoc.
// The frame may run scripts but gets an opaque origin: no allow-same-origin.
func FrameHTML(doc models.SourceDocument) string {
	return `<iframe title="Preview" sandbox="allow-scripts" srcdoc="` + html.EscapeString(Build(doc)) + `"></iframe>`
}
