package preview

import (
	"io"
	"mime"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/YashMarke130105/pen-perfect-playground/internal/models"
)

// ContentSecurityPolicy isolates a served preview: scripts run, but the
// document has an opaque origin and may not load anything except inline
// code and images.
const ContentSecurityPolicy = "sandbox allow-scripts; default-src 'none'; script-src 'unsafe-inline'; style-src 'unsafe-inline'; img-src data: https:"

const maxSourceBytes = 2 << 20

// WriteDocument serves the preview document for doc with isolation headers.
func WriteDocument(w http.ResponseWriter, doc models.SourceDocument) {
	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Content-Security-Policy", ContentSecurityPolicy)
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Cache-Control", "no-store")
	h.Set("Referrer-Policy", "no-referrer")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, Build(doc))
}

// ServeHTTP answers POST requests carrying sources, as a form (html, css,
// js) or as JSON ({"markup", "style", "script"}), with the preview document.
func (r *Renderer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	doc, err := decodeSource(req)
	if err != nil {
		r.logger.Debug("invalid preview request", "error", err)
		http.Error(w, "invalid source", http.StatusBadRequest)
		return
	}
	WriteDocument(w, doc)
}

func decodeSource(req *http.Request) (models.SourceDocument, error) {
	req.Body = http.MaxBytesReader(nil, req.Body, maxSourceBytes)

	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body struct {
			Markup string `json:"markup"`
			Style  string `json:"style"`
			Script string `json:"script"`
		}
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return models.SourceDocument{}, err
		}
		if err := sonic.Unmarshal(data, &body); err != nil {
			return models.SourceDocument{}, err
		}
		return models.SourceDocument{Markup: body.Markup, Style: body.Style, Script: body.Script}, nil
	}

	if err := req.ParseForm(); err != nil {
		return models.SourceDocument{}, err
	}
	return models.SourceDocument{
		Markup: req.PostForm.Get("html"),
		Style:  req.PostForm.Get("css"),
		Script: req.PostForm.Get("js"),
	}, nil
}
