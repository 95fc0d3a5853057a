package routing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okdaichi/meshroute/internal/transport"
	"github.com/okdaichi/meshroute/internal/wire"
)

func TestStatusHandlerFuncReturnsNodeStatus(t *testing.T) {
	hub := transport.NewLoopbackHub()
	nt := NewNeighborTable()
	nt.Add("B", "B", 1)
	node := NewNode(Config{ID: "A", Proto: wire.ProtoLSR}, transport.NewLoopbackTransport(hub, "A"), nt)
	require.NoError(t, node.Start(context.Background()))

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	StatusHandlerFunc(node).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status NodeStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, "A", status.ID)
	require.Equal(t, "lsr", status.Proto)
	require.Len(t, status.Neighbors, 1)
	require.Equal(t, "B", status.Neighbors[0].ID)
}

func TestStatusHandlerFuncRejectsNonGet(t *testing.T) {
	hub := transport.NewLoopbackHub()
	node := NewNode(Config{ID: "A", Proto: wire.ProtoFlooding}, transport.NewLoopbackTransport(hub, "A"), NewNeighborTable())

	req := httptest.NewRequest(http.MethodPost, "/status", nil)
	rec := httptest.NewRecorder()
	StatusHandlerFunc(node).ServeHTTP(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthHandlerFuncOK(t *testing.T) {
	hub := transport.NewLoopbackHub()
	node := NewNode(Config{ID: "A", Proto: wire.ProtoFlooding}, transport.NewLoopbackTransport(hub, "A"), NewNeighborTable())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	HealthHandlerFunc(node).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
