package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/YashMarke130105/pen-perfect-playground/internal/auth"
	"github.com/YashMarke130105/pen-perfect-playground/internal/exporter"
	"github.com/YashMarke130105/pen-perfect-playground/internal/middleware"
	"github.com/YashMarke130105/pen-perfect-playground/internal/models"
	"github.com/YashMarke130105/pen-perfect-playground/internal/storage"
	v1 "github.com/YashMarke130105/pen-perfect-playground/pkg/api/v1"
	"github.com/YashMarke130105/pen-perfect-playground/pkg/api/v1/apiv1connect"
)

// Gallery page sizes.
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// ProjectService implements the Connect ProjectService.
// Reads are public; writes need a session and are restricted to the owner.
type ProjectService struct {
	apiv1connect.UnimplementedProjectServiceHandler
	store storage.Store
}

// NewProjectService creates a new ProjectService with the given storage backend.
func NewProjectService(store storage.Store) *ProjectService {
	return &ProjectService{store: store}
}

// SaveProject creates a project when no ID is given and updates it otherwise.
func (s *ProjectService) SaveProject(ctx context.Context, req *connect.Request[v1.SaveProjectRequest]) (*connect.Response[v1.SaveProjectResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		slog.Warn("SaveProject rejected without session")
		return nil, middleware.Unauthenticated(auth.ErrMissingToken)
	}

	project := &models.Project{
		ID:      strings.TrimSpace(req.Msg.Id),
		Title:   CleanTitle(req.Msg.Title),
		Source:  sourceFromProto(req.Msg.GetSource()),
		OwnerID: userID,
	}
	slog.Info("SaveProject request received",
		"project_id", project.ID,
		"user_id", userID,
		"title", project.Title,
	)

	created := project.ID == ""
	if created {
		if err := s.store.CreateProject(ctx, project); err != nil {
			slog.Error("SaveProject failed", "error", err)
			return nil, toConnectError(err)
		}
	} else {
		if err := s.store.UpdateProject(ctx, userID, project); err != nil {
			slog.Error("SaveProject failed", "project_id", project.ID, "error", err)
			return nil, toConnectError(err)
		}
	}

	slog.Info("Project saved", "project_id", project.ID, "created", created)

	return connect.NewResponse(&v1.SaveProjectResponse{
		Project: projectToProto(project, s.authorName(ctx, project.OwnerID)),
		Created: created,
	}), nil
}

// GetProject retrieves a project by ID.
func (s *ProjectService) GetProject(ctx context.Context, req *connect.Request[v1.GetProjectRequest]) (*connect.Response[v1.GetProjectResponse], error) {
	slog.Info("GetProject request received", "project_id", req.Msg.Id)

	if req.Msg.Id == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("id required"))
	}

	project, err := s.store.GetProject(ctx, req.Msg.Id)
	if err != nil {
		slog.Error("GetProject failed", "project_id", req.Msg.Id, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&v1.GetProjectResponse{
		Project: projectToProto(project, s.authorName(ctx, project.OwnerID)),
	}), nil
}

// ListProjects lists the gallery, optionally restricted to the caller's projects.
func (s *ProjectService) ListProjects(ctx context.Context, req *connect.Request[v1.ListProjectsRequest]) (*connect.Response[v1.ListProjectsResponse], error) {
	slog.Info("ListProjects request received", "mine", req.Msg.Mine, "query", req.Msg.Query, "offset", req.Msg.Offset)

	if req.Msg.Offset < 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("offset must not be negative"))
	}

	limit := listLimit(req.Msg.Limit)
	filter := models.ProjectFilter{
		Query: strings.TrimSpace(req.Msg.Query),
		// One extra row tells whether another page follows.
		Limit:   limit + 1,
		Offset:  int(req.Msg.Offset),
		OrderBy: projectOrder(req.Msg.OrderBy),
	}
	if req.Msg.Mine {
		filter.OwnerID = middleware.GetUserID(ctx)
		if filter.OwnerID == "" {
			return nil, middleware.Unauthenticated(auth.ErrMissingToken)
		}
	}

	summaries, err := s.store.ListProjects(ctx, filter)
	if err != nil {
		slog.Error("ListProjects failed", "error", err)
		return nil, toConnectError(err)
	}

	resp := &v1.ListProjectsResponse{}
	if len(summaries) > limit {
		summaries = summaries[:limit]
		resp.NextOffset = req.Msg.Offset + int32(limit)
	}

	resp.Projects = make([]*v1.Project, len(summaries))
	for i := range summaries {
		resp.Projects[i] = projectToProto(&summaries[i].Project, summaries[i].AuthorUsername)
	}

	slog.Info("ListProjects successful", "count", len(resp.Projects), "next_offset", resp.NextOffset)

	return connect.NewResponse(resp), nil
}

// DeleteProject removes one of the caller's projects.
func (s *ProjectService) DeleteProject(ctx context.Context, req *connect.Request[v1.DeleteProjectRequest]) (*connect.Response[v1.DeleteProjectResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, middleware.Unauthenticated(auth.ErrMissingToken)
	}
	slog.Info("DeleteProject request received", "project_id", req.Msg.Id, "user_id", userID)

	if err := s.store.DeleteProject(ctx, userID, req.Msg.Id); err != nil {
		slog.Error("DeleteProject failed", "project_id", req.Msg.Id, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Project deleted", "project_id", req.Msg.Id)

	return connect.NewResponse(&v1.DeleteProjectResponse{}), nil
}

// ExportProject builds the standalone HTML file for a saved project, or for
// the title and source in the request when no ID is given.
func (s *ProjectService) ExportProject(ctx context.Context, req *connect.Request[v1.ExportProjectRequest]) (*connect.Response[v1.ExportProjectResponse], error) {
	title, doc := req.Msg.Title, sourceFromProto(req.Msg.GetSource())
	if req.Msg.Id != "" {
		project, err := s.store.GetProject(ctx, req.Msg.Id)
		if err != nil {
			slog.Error("ExportProject failed", "project_id", req.Msg.Id, "error", err)
			return nil, toConnectError(err)
		}
		title, doc = project.Title, project.Source
	}

	file := exporter.Export(title, doc)
	slog.Info("Project exported", "project_id", req.Msg.Id, "file", file.Name)

	return connect.NewResponse(&v1.ExportProjectResponse{
		FileName:    file.Name,
		ContentType: file.ContentType,
		Content:     string(file.Content),
	}), nil
}

// ImportProject reads an exported HTML file back into a title and source.
func (s *ProjectService) ImportProject(ctx context.Context, req *connect.Request[v1.ImportProjectRequest]) (*connect.Response[v1.ImportProjectResponse], error) {
	title, doc, err := exporter.Import(strings.NewReader(req.Msg.Content))
	if err != nil {
		slog.Warn("ImportProject failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&v1.ImportProjectResponse{
		Title:  CleanTitle(title),
		Source: sourceToProto(doc),
	}), nil
}

// authorName looks up the username of ownerID. A missing account yields "".
func (s *ProjectService) authorName(ctx context.Context, ownerID string) string {
	user, err := s.store.GetUserByID(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("Failed to look up author", "user_id", ownerID, "error", err)
		}
		return ""
	}
	return user.Username
}

func listLimit(limit int32) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return int(limit)
	}
}

func projectOrder(orderBy string) models.ProjectOrder {
	switch strings.ToLower(orderBy) {
	case "created":
		return models.OrderCreatedDesc
	case "title":
		return models.OrderTitleAsc
	default:
		return models.OrderUpdatedDesc
	}
}
