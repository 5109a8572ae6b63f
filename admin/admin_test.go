package admin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nohros/nohrosruby/config"
	"github.com/nohros/nohrosruby/node"
	"github.com/nohros/nohrosruby/protocol"
	"github.com/nohros/nohrosruby/registry"
	"github.com/nohros/nohrosruby/snapshot"
)

type fixture struct {
	svc    *node.Service
	server *httptest.Server
	echo   int64
	batch  int64
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := registry.Open(registry.MemoryPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	echo, err := db.Add(ctx, protocol.FactSet{{Key: "service", Value: "echo"}, {Key: "tier", Value: "web"}},
		registry.NewServiceMetadata("echo", registry.RuntimeNet, "", ""))
	require.NoError(t, err)
	batch, err := db.Add(ctx, protocol.FactSet{{Key: "service", Value: "batch"}},
		registry.NewServiceMetadata("batch", registry.RuntimePython, "", ""))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	svc := node.NewService(config.Default().Node, db, node.WithMetrics(node.NewMetrics("ruby", reg)))
	require.NoError(t, svc.Table().AddRoute(echo.ID(), "peer-a"))

	server := httptest.NewServer(NewServer(svc, reg, nil).Handler())
	t.Cleanup(server.Close)

	return &fixture{svc: svc, server: server, echo: echo.ID(), batch: batch.ID()}
}

func (f *fixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(f.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type serviceJSON struct {
	Service struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Facts []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"facts"`
	} `json:"service"`
	Address string `json:"address"`
}

func TestHealthReportsStoppedNode(t *testing.T) {
	f := setup(t)

	resp := f.get(t, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, "stopped", body["status"])
}

func TestListRoutes(t *testing.T) {
	f := setup(t)

	resp := f.get(t, "/routes")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	routes := decode[[]map[string]any](t, resp)
	require.Len(t, routes, 1)
	assert.Equal(t, "peer-a", routes[0]["address"])
}

func TestRemoveRoute(t *testing.T) {
	f := setup(t)

	req, err := http.NewRequest(http.MethodDelete, f.server.URL+"/routes/"+itoa(f.echo), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, f.svc.Table().Len())

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListServices(t *testing.T) {
	f := setup(t)

	all := decode[[]serviceJSON](t, f.get(t, "/services"))
	require.Len(t, all, 2)
	assert.Equal(t, "echo", all[0].Service.Name)
	assert.Equal(t, "peer-a", all[0].Address)
	assert.Empty(t, all[1].Address)

	filtered := decode[[]serviceJSON](t, f.get(t, "/services?fact=tier=web"))
	require.Len(t, filtered, 1)
	assert.Equal(t, f.echo, filtered[0].Service.ID)
	assert.Len(t, filtered[0].Service.Facts, 2)

	resp := f.get(t, "/services?fact=novalue")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetService(t *testing.T) {
	f := setup(t)

	svc := decode[serviceJSON](t, f.get(t, "/services/"+itoa(f.batch)))
	assert.Equal(t, "batch", svc.Service.Name)

	assert.Equal(t, http.StatusNotFound, f.get(t, "/services/999").StatusCode)
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/services/abc").StatusCode)
}

func TestSnapshotServices(t *testing.T) {
	f := setup(t)

	resp := f.get(t, "/snapshot/services")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, snapshot.ContentType, resp.Header.Get("Content-Type"))

	rows, err := snapshot.ReadServices(resp.Body)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "peer-a", rows[0].Address)
}

func TestMetricsEndpoint(t *testing.T) {
	f := setup(t)
	f.svc.Metrics().UpdateRoutes(f.svc.Table().Len())

	resp := f.get(t, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "ruby_routes 1"), "metrics output should include the routes gauge")
}

func TestServerStartStop(t *testing.T) {
	f := setup(t)
	srv := NewServer(f.svc, prometheus.NewRegistry(), nil)
	require.NoError(t, srv.StartAsync("127.0.0.1:0"))
	assert.Error(t, srv.StartAsync("127.0.0.1:0"))

	resp, err := http.Get("http://" + srv.Addr() + "/routes")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	assert.Empty(t, srv.Addr())
}

func TestHealthServer(t *testing.T) {
	hs := NewHealthServer(nil)
	require.NoError(t, hs.StartAsync("127.0.0.1:0"))
	defer hs.Stop()

	conn, err := grpc.NewClient(hs.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	check := func() healthpb.HealthCheckResponse_ServingStatus {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: HealthServiceName})
		require.NoError(t, err)
		return resp.GetStatus()
	}

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check())
	hs.SetServing(true)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check())
	hs.SetServing(false)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check())
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
