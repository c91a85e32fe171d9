package service

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/YashMarke130105/pen-perfect-playground/internal/exporter"
	"github.com/YashMarke130105/pen-perfect-playground/internal/models"
	"github.com/YashMarke130105/pen-perfect-playground/internal/preview"
	"github.com/YashMarke130105/pen-perfect-playground/internal/storage"
)

// Documents serves saved projects over plain HTTP: the sandboxed preview
// document and the export download. Both routes expect an {id} path value.
type Documents struct {
	store storage.ProjectStore
}

// NewDocuments creates the document handlers.
func NewDocuments(store storage.ProjectStore) *Documents {
	return &Documents{store: store}
}

// Preview handles GET /preview/{id}.
func (d *Documents) Preview(w http.ResponseWriter, r *http.Request) {
	project, ok := d.load(w, r)
	if !ok {
		return
	}
	preview.WriteDocument(w, project.Source)
}

// Export handles GET /export/{id} with an attachment download.
func (d *Documents) Export(w http.ResponseWriter, r *http.Request) {
	project, ok := d.load(w, r)
	if !ok {
		return
	}

	file := exporter.Export(project.Title, project.Source)
	w.Header().Set("Content-Type", file.ContentType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Content)
}

func (d *Documents) load(w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
	id := r.PathValue("id")
	project, err := d.store.GetProject(r.Context(), id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		http.NotFound(w, r)
		return nil, false
	case err != nil:
		slog.Error("Failed to load project", "project_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	return project, true
}
