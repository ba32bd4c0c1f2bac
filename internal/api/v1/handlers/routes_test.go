package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurtura/leadline/internal/services"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("WIDGET_KEY", "test-widget-key")

	svcs, err := services.InitializeServices()
	require.NoError(t, err)
	t.Cleanup(svcs.Close)

	router := mux.NewRouter()
	RegisterV1Routes(router, svcs)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestChatRoutesRequireWidgetKey(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/v1/chat/session", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateSessionRoute(t *testing.T) {
	server := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/v1/chat/session", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer test-widget-key")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Cookies())
}

func TestTurnRouteWithoutSession(t *testing.T) {
	server := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/v1/chat/turn",
		strings.NewReader(`{"type":"text","value":"hello"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer test-widget-key")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
