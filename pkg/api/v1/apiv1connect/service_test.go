package apiv1connect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/YashMarke130105/pen-perfect-playground/pkg/api/v1"
)

type echoPreview struct {
	UnimplementedPreviewServiceHandler
}

func (echoPreview) Render(_ context.Context, req *connect.Request[v1.RenderRequest]) (*connect.Response[v1.RenderResponse], error) {
	return connect.NewResponse(&v1.RenderResponse{Body: req.Msg.GetSource().GetMarkup()}), nil
}

func TestHandlersAndClients(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle(NewPreviewServiceHandler(echoPreview{}))
	mux.Handle(NewProjectServiceHandler(UnimplementedProjectServiceHandler{}))
	server := httptest.NewServer(mux)
	defer server.Close()

	t.Run("unary call round trips through the JSON codec", func(t *testing.T) {
		client := NewPreviewServiceClient(server.Client(), server.URL+"/")

		resp, err := client.Render(context.Background(), connect.NewRequest(&v1.RenderRequest{
			Source: &v1.Source{Markup: "<h1>Hi</h1>"},
		}))
		require.NoError(t, err)
		assert.Equal(t, "<h1>Hi</h1>", resp.Msg.Body)
	})

	t.Run("unimplemented methods", func(t *testing.T) {
		client := NewProjectServiceClient(server.Client(), server.URL)

		_, err := client.GetProject(context.Background(), connect.NewRequest(&v1.GetProjectRequest{Id: "x"}))
		require.Error(t, err)
		assert.Equal(t, connect.CodeUnimplemented, connect.CodeOf(err))
		assert.Contains(t, err.Error(), "codecanvas.v1.ProjectService.GetProject is not implemented")
	})

	t.Run("plain JSON POST", func(t *testing.T) {
		resp, err := server.Client().Post(server.URL+PreviewServiceRenderProcedure, "application/json",
			strings.NewReader(`{"source":{"markup":"<p>curl</p>"}}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown procedure", func(t *testing.T) {
		resp, err := server.Client().Post(server.URL+"/"+PreviewServiceName+"/Nope", "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCodec(t *testing.T) {
	codec := v1.Codec{}
	assert.Equal(t, "json", codec.Name())

	data, err := codec.Marshal(&v1.GetSessionResponse{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"signedIn": false}`, string(data))

	var msg v1.SignInRequest
	require.NoError(t, codec.Unmarshal(nil, &msg), "empty bodies decode to the zero message")
	assert.Error(t, codec.Unmarshal([]byte("{"), &msg))
}
