package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/YashMarke130105/pen-perfect-playground/internal/preview"
	v1 "github.com/YashMarke130105/pen-perfect-playground/pkg/api/v1"
	"github.com/YashMarke130105/pen-perfect-playground/pkg/api/v1/apiv1connect"
)

// PreviewService implements the Connect PreviewService on top of the
// headless renderer.
type PreviewService struct {
	apiv1connect.UnimplementedPreviewServiceHandler
	renderer *preview.Renderer
}

// NewPreviewService creates a PreviewService.
func NewPreviewService(renderer *preview.Renderer) *PreviewService {
	return &PreviewService{renderer: renderer}
}

// Render runs the source headlessly. Script failures are part of the
// response; only renderer failures are errors.
func (s *PreviewService) Render(ctx context.Context, req *connect.Request[v1.RenderRequest]) (*connect.Response[v1.RenderResponse], error) {
	view, err := s.renderer.Render(ctx, sourceFromProto(req.Msg.GetSource()))
	if err != nil {
		slog.Error("Render failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Debug("Render finished",
		"diagnostics", len(view.Diagnostics),
		"console", len(view.Console),
		"timed_out", view.TimedOut,
		"duration", view.Duration,
	)

	return connect.NewResponse(viewToProto(view)), nil
}
