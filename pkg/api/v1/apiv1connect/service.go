// Package apiv1connect binds the codecanvas.v1 services to Connect handlers
// and clients. Every handler and client speaks the apiv1 JSON codec.
package apiv1connect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	v1 "github.com/YashMarke130105/pen-perfect-playground/pkg/api/v1"
)

const (
	AuthServiceName    = "codecanvas.v1.AuthService"
	ProjectServiceName = "codecanvas.v1.ProjectService"
	PreviewServiceName = "codecanvas.v1.PreviewService"
)

const (
	AuthServiceSignUpProcedure        = "/codecanvas.v1.AuthService/SignUp"
	AuthServiceSignInProcedure        = "/codecanvas.v1.AuthService/SignIn"
	AuthServiceSignOutProcedure       = "/codecanvas.v1.AuthService/SignOut"
	AuthServiceGetSessionProcedure    = "/codecanvas.v1.AuthService/GetSession"
	AuthServiceUpdateProfileProcedure = "/codecanvas.v1.AuthService/UpdateProfile"

	ProjectServiceSaveProjectProcedure   = "/codecanvas.v1.ProjectService/SaveProject"
	ProjectServiceGetProjectProcedure    = "/codecanvas.v1.ProjectService/GetProject"
	ProjectServiceListProjectsProcedure  = "/codecanvas.v1.ProjectService/ListProjects"
	ProjectServiceDeleteProjectProcedure = "/codecanvas.v1.ProjectService/DeleteProject"
	ProjectServiceExportProjectProcedure = "/codecanvas.v1.ProjectService/ExportProject"
	ProjectServiceImportProjectProcedure = "/codecanvas.v1.ProjectService/ImportProject"

	PreviewServiceRenderProcedure = "/codecanvas.v1.PreviewService/Render"
)

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(v1.Codec{})}, opts...)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(v1.Codec{})}, opts...)
}

// route serves the handler registered for the request path.
func route(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

func unimplemented(procedure string) error {
	name := strings.ReplaceAll(strings.TrimPrefix(procedure, "/"), "/", ".")
	return connect.NewError(connect.CodeUnimplemented, errors.New(name+" is not implemented"))
}

// AuthServiceClient is a client for the codecanvas.v1.AuthService service.
type AuthServiceClient interface {
	SignUp(context.Context, *connect.Request[v1.SignUpRequest]) (*connect.Response[v1.SignUpResponse], error)
	SignIn(context.Context, *connect.Request[v1.SignInRequest]) (*connect.Response[v1.SignInResponse], error)
	SignOut(context.Context, *connect.Request[v1.SignOutRequest]) (*connect.Response[v1.SignOutResponse], error)
	GetSession(context.Context, *connect.Request[v1.GetSessionRequest]) (*connect.Response[v1.GetSessionResponse], error)
	UpdateProfile(context.Context, *connect.Request[v1.UpdateProfileRequest]) (*connect.Response[v1.UpdateProfileResponse], error)
}

// NewAuthServiceClient constructs a client for the codecanvas.v1.AuthService
// service. baseURL is the server root, e.g. http://localhost:8080.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &authServiceClient{
		signUp:        connect.NewClient[v1.SignUpRequest, v1.SignUpResponse](httpClient, baseURL+AuthServiceSignUpProcedure, opts...),
		signIn:        connect.NewClient[v1.SignInRequest, v1.SignInResponse](httpClient, baseURL+AuthServiceSignInProcedure, opts...),
		signOut:       connect.NewClient[v1.SignOutRequest, v1.SignOutResponse](httpClient, baseURL+AuthServiceSignOutProcedure, opts...),
		getSession:    connect.NewClient[v1.GetSessionRequest, v1.GetSessionResponse](httpClient, baseURL+AuthServiceGetSessionProcedure, opts...),
		updateProfile: connect.NewClient[v1.UpdateProfileRequest, v1.UpdateProfileResponse](httpClient, baseURL+AuthServiceUpdateProfileProcedure, opts...),
	}
}

type authServiceClient struct {
	signUp        *connect.Client[v1.SignUpRequest, v1.SignUpResponse]
	signIn        *connect.Client[v1.SignInRequest, v1.SignInResponse]
	signOut       *connect.Client[v1.SignOutRequest, v1.SignOutResponse]
	getSession    *connect.Client[v1.GetSessionRequest, v1.GetSessionResponse]
	updateProfile *connect.Client[v1.UpdateProfileRequest, v1.UpdateProfileResponse]
}

func (c *authServiceClient) SignUp(ctx context.Context, req *connect.Request[v1.SignUpRequest]) (*connect.Response[v1.SignUpResponse], error) {
	return c.signUp.CallUnary(ctx, req)
}

func (c *authServiceClient) SignIn(ctx context.Context, req *connect.Request[v1.SignInRequest]) (*connect.Response[v1.SignInResponse], error) {
	return c.signIn.CallUnary(ctx, req)
}

func (c *authServiceClient) SignOut(ctx context.Context, req *connect.Request[v1.SignOutRequest]) (*connect.Response[v1.SignOutResponse], error) {
	return c.signOut.CallUnary(ctx, req)
}

func (c *authServiceClient) GetSession(ctx context.Context, req *connect.Request[v1.GetSessionRequest]) (*connect.Response[v1.GetSessionResponse], error) {
	return c.getSession.CallUnary(ctx, req)
}

func (c *authServiceClient) UpdateProfile(ctx context.Context, req *connect.Request[v1.UpdateProfileRequest]) (*connect.Response[v1.UpdateProfileResponse], error) {
	return c.updateProfile.CallUnary(ctx, req)
}

// AuthServiceHandler is implemented by the codecanvas.v1.AuthService server.
type AuthServiceHandler interface {
	SignUp(context.Context, *connect.Request[v1.SignUpRequest]) (*connect.Response[v1.SignUpResponse], error)
	SignIn(context.Context, *connect.Request[v1.SignInRequest]) (*connect.Response[v1.SignInResponse], error)
	SignOut(context.Context, *connect.Request[v1.SignOutRequest]) (*connect.Response[v1.SignOutResponse], error)
	GetSession(context.Context, *connect.Request[v1.GetSessionRequest]) (*connect.Response[v1.GetSessionResponse], error)
	UpdateProfile(context.Context, *connect.Request[v1.UpdateProfileRequest]) (*connect.Response[v1.UpdateProfileResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler for svc and returns the path
// to mount it on.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + AuthServiceName + "/", route(map[string]http.Handler{
		AuthServiceSignUpProcedure:        connect.NewUnaryHandler(AuthServiceSignUpProcedure, svc.SignUp, opts...),
		AuthServiceSignInProcedure:        connect.NewUnaryHandler(AuthServiceSignInProcedure, svc.SignIn, opts...),
		AuthServiceSignOutProcedure:       connect.NewUnaryHandler(AuthServiceSignOutProcedure, svc.SignOut, opts...),
		AuthServiceGetSessionProcedure:    connect.NewUnaryHandler(AuthServiceGetSessionProcedure, svc.GetSession, opts...),
		AuthServiceUpdateProfileProcedure: connect.NewUnaryHandler(AuthServiceUpdateProfileProcedure, svc.UpdateProfile, opts...),
	})
}

// UnimplementedAuthServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedAuthServiceHandler struct{}

func (UnimplementedAuthServiceHandler) SignUp(context.Context, *connect.Request[v1.SignUpRequest]) (*connect.Response[v1.SignUpResponse], error) {
	return nil, unimplemented(AuthServiceSignUpProcedure)
}

func (UnimplementedAuthServiceHandler) SignIn(context.Context, *connect.Request[v1.SignInRequest]) (*connect.Response[v1.SignInResponse], error) {
	return nil, unimplemented(AuthServiceSignInProcedure)
}

func (UnimplementedAuthServiceHandler) SignOut(context.Context, *connect.Request[v1.SignOutRequest]) (*connect.Response[v1.SignOutResponse], error) {
	return nil, unimplemented(AuthServiceSignOutProcedure)
}

func (UnimplementedAuthServiceHandler) GetSession(context.Context, *connect.Request[v1.GetSessionRequest]) (*connect.Response[v1.GetSessionResponse], error) {
	return nil, unimplemented(AuthServiceGetSessionProcedure)
}

func (UnimplementedAuthServiceHandler) UpdateProfile(context.Context, *connect.Request[v1.UpdateProfileRequest]) (*connect.Response[v1.UpdateProfileResponse], error) {
	return nil, unimplemented(AuthServiceUpdateProfileProcedure)
}

// ProjectServiceClient is a client for the codecanvas.v1.ProjectService service.
type ProjectServiceClient interface {
	SaveProject(context.Context, *connect.Request[v1.SaveProjectRequest]) (*connect.Response[v1.SaveProjectResponse], error)
	GetProject(context.Context, *connect.Request[v1.GetProjectRequest]) (*connect.Response[v1.GetProjectResponse], error)
	ListProjects(context.Context, *connect.Request[v1.ListProjectsRequest]) (*connect.Response[v1.ListProjectsResponse], error)
	DeleteProject(context.Context, *connect.Request[v1.DeleteProjectRequest]) (*connect.Response[v1.DeleteProjectResponse], error)
	ExportProject(context.Context, *connect.Request[v1.ExportProjectRequest]) (*connect.Response[v1.ExportProjectResponse], error)
	ImportProject(context.Context, *connect.Request[v1.ImportProjectRequest]) (*connect.Response[v1.ImportProjectResponse], error)
}

// NewProjectServiceClient constructs a client for the
// codecanvas.v1.ProjectService service.
func NewProjectServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ProjectServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &projectServiceClient{
		saveProject:   connect.NewClient[v1.SaveProjectRequest, v1.SaveProjectResponse](httpClient, baseURL+ProjectServiceSaveProjectProcedure, opts...),
		getProject:    connect.NewClient[v1.GetProjectRequest, v1.GetProjectResponse](httpClient, baseURL+ProjectServiceGetProjectProcedure, opts...),
		listProjects:  connect.NewClient[v1.ListProjectsRequest, v1.ListProjectsResponse](httpClient, baseURL+ProjectServiceListProjectsProcedure, opts...),
		deleteProject: connect.NewClient[v1.DeleteProjectRequest, v1.DeleteProjectResponse](httpClient, baseURL+ProjectServiceDeleteProjectProcedure, opts...),
		exportProject: connect.NewClient[v1.ExportProjectRequest, v1.ExportProjectResponse](httpClient, baseURL+ProjectServiceExportProjectProcedure, opts...),
		importProject: connect.NewClient[v1.ImportProjectRequest, v1.ImportProjectResponse](httpClient, baseURL+ProjectServiceImportProjectProcedure, opts...),
	}
}

type projectServiceClient struct {
	saveProject   *connect.Client[v1.SaveProjectRequest, v1.SaveProjectResponse]
	getProject    *connect.Client[v1.GetProjectRequest, v1.GetProjectResponse]
	listProjects  *connect.Client[v1.ListProjectsRequest, v1.ListProjectsResponse]
	deleteProject *connect.Client[v1.DeleteProjectRequest, v1.DeleteProjectResponse]
	exportProject *connect.Client[v1.ExportProjectRequest, v1.ExportProjectResponse]
	importProject *connect.Client[v1.ImportProjectRequest, v1.ImportProjectResponse]
}

func (c *projectServiceClient) SaveProject(ctx context.Context, req *connect.Request[v1.SaveProjectRequest]) (*connect.Response[v1.SaveProjectResponse], error) {
	return c.saveProject.CallUnary(ctx, req)
}

func (c *projectServiceClient) GetProject(ctx context.Context, req *connect.Request[v1.GetProjectRequest]) (*connect.Response[v1.GetProjectResponse], error) {
	return c.getProject.CallUnary(ctx, req)
}

func (c *projectServiceClient) ListProjects(ctx context.Context, req *connect.Request[v1.ListProjectsRequest]) (*connect.Response[v1.ListProjectsResponse], error) {
	return c.listProjects.CallUnary(ctx, req)
}

func (c *projectServiceClient) DeleteProject(ctx context.Context, req *connect.Request[v1.DeleteProjectRequest]) (*connect.Response[v1.DeleteProjectResponse], error) {
	return c.deleteProject.CallUnary(ctx, req)
}

func (c *projectServiceClient) ExportProject(ctx context.Context, req *connect.Request[v1.ExportProjectRequest]) (*connect.Response[v1.ExportProjectResponse], error) {
	return c.exportProject.CallUnary(ctx, req)
}

func (c *projectServiceClient) ImportProject(ctx context.Context, req *connect.Request[v1.ImportProjectRequest]) (*connect.Response[v1.ImportProjectResponse], error) {
	return c.importProject.CallUnary(ctx, req)
}

// ProjectServiceHandler is implemented by the codecanvas.v1.ProjectService server.
type ProjectServiceHandler interface {
	SaveProject(context.Context, *connect.Request[v1.SaveProjectRequest]) (*connect.Response[v1.SaveProjectResponse], error)
	GetProject(context.Context, *connect.Request[v1.GetProjectRequest]) (*connect.Response[v1.GetProjectResponse], error)
	ListProjects(context.Context, *connect.Request[v1.ListProjectsRequest]) (*connect.Response[v1.ListProjectsResponse], error)
	DeleteProject(context.Context, *connect.Request[v1.DeleteProjectRequest]) (*connect.Response[v1.DeleteProjectResponse], error)
	ExportProject(context.Context, *connect.Request[v1.ExportProjectRequest]) (*connect.Response[v1.ExportProjectResponse], error)
	ImportProject(context.Context, *connect.Request[v1.ImportProjectRequest]) (*connect.Response[v1.ImportProjectResponse], error)
}

// NewProjectServiceHandler builds an HTTP handler for svc and returns the
// path to mount it on.
func NewProjectServiceHandler(svc ProjectServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + ProjectServiceName + "/", route(map[string]http.Handler{
		ProjectServiceSaveProjectProcedure:   connect.NewUnaryHandler(ProjectServiceSaveProjectProcedure, svc.SaveProject, opts...),
		ProjectServiceGetProjectProcedure:    connect.NewUnaryHandler(ProjectServiceGetProjectProcedure, svc.GetProject, opts...),
		ProjectServiceListProjectsProcedure:  connect.NewUnaryHandler(ProjectServiceListProjectsProcedure, svc.ListProjects, opts...),
		ProjectServiceDeleteProjectProcedure: connect.NewUnaryHandler(ProjectServiceDeleteProjectProcedure, svc.DeleteProject, opts...),
		ProjectServiceExportProjectProcedure: connect.NewUnaryHandler(ProjectServiceExportProjectProcedure, svc.ExportProject, opts...),
		ProjectServiceImportProjectProcedure: connect.NewUnaryHandler(ProjectServiceImportProjectProcedure, svc.ImportProject, opts...),
	})
}

// UnimplementedProjectServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedProjectServiceHandler struct{}

func (UnimplementedProjectServiceHandler) SaveProject(context.Context, *connect.Request[v1.SaveProjectRequest]) (*connect.Response[v1.SaveProjectResponse], error) {
	return nil, unimplemented(ProjectServiceSaveProjectProcedure)
}

func (UnimplementedProjectServiceHandler) GetProject(context.Context, *connect.Request[v1.GetProjectRequest]) (*connect.Response[v1.GetProjectResponse], error) {
	return nil, unimplemented(ProjectServiceGetProjectProcedure)
}

func (UnimplementedProjectServiceHandler) ListProjects(context.Context, *connect.Request[v1.ListProjectsRequest]) (*connect.Response[v1.ListProjectsResponse], error) {
	return nil, unimplemented(ProjectServiceListProjectsProcedure)
}

func (UnimplementedProjectServiceHandler) DeleteProject(context.Context, *connect.Request[v1.DeleteProjectRequest]) (*connect.Response[v1.DeleteProjectResponse], error) {
	return nil, unimplemented(ProjectServiceDeleteProjectProcedure)
}

func (UnimplementedProjectServiceHandler) ExportProject(context.Context, *connect.Request[v1.ExportProjectRequest]) (*connect.Response[v1.ExportProjectResponse], error) {
	return nil, unimplemented(ProjectServiceExportProjectProcedure)
}

func (UnimplementedProjectServiceHandler) ImportProject(context.Context, *connect.Request[v1.ImportProjectRequest]) (*connect.Response[v1.ImportProjectResponse], error) {
	return nil, unimplemented(ProjectServiceImportProjectProcedure)
}

// PreviewServiceClient is a client for the codecanvas.v1.PreviewService service.
type PreviewServiceClient interface {
	Render(context.Context, *connect.Request[v1.RenderRequest]) (*connect.Response[v1.RenderResponse], error)
}

// NewPreviewServiceClient constructs a client for the
// codecanvas.v1.PreviewService service.
func NewPreviewServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) PreviewServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	return &previewServiceClient{
		render: connect.NewClient[v1.RenderRequest, v1.RenderResponse](httpClient, baseURL+PreviewServiceRenderProcedure, clientOptions(opts)...),
	}
}

type previewServiceClient struct {
	render *connect.Client[v1.RenderRequest, v1.RenderResponse]
}

func (c *previewServiceClient) Render(ctx context.Context, req *connect.Request[v1.RenderRequest]) (*connect.Response[v1.RenderResponse], error) {
	return c.render.CallUnary(ctx, req)
}

// PreviewServiceHandler is implemented by the codecanvas.v1.PreviewService server.
type PreviewServiceHandler interface {
	Render(context.Context, *connect.Request[v1.RenderRequest]) (*connect.Response[v1.RenderResponse], error)
}

// NewPreviewServiceHandler builds an HTTP handler for svc and returns the
// path to mount it on.
func NewPreviewServiceHandler(svc PreviewServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + PreviewServiceName + "/", route(map[string]http.Handler{
		PreviewServiceRenderProcedure: connect.NewUnaryHandler(PreviewServiceRenderProcedure, svc.Render, handlerOptions(opts)...),
	})
}

// UnimplementedPreviewServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedPreviewServiceHandler struct{}

func (UnimplementedPreviewServiceHandler) Render(context.Context, *connect.Request[v1.RenderRequest]) (*connect.Response[v1.RenderResponse], error) {
	return nil, unimplemented(PreviewServiceRenderProcedure)
}
