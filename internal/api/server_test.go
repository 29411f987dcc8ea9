package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pedigree/pkg/cache"
	pederrors "github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/httputil"
	"github.com/matzehuels/pedigree/pkg/observability"
	"github.com/matzehuels/pedigree/pkg/pipeline"
	"github.com/matzehuels/pedigree/pkg/record"
	"github.com/matzehuels/pedigree/pkg/render"
)

type rec = record.Record[record.Attributes]

type fixture struct {
	srv    *Server
	runner *pipeline.Runner[record.Attributes]
	url    string
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := cache.NewRedisCache(context.Background(), cache.RedisOptions{
		URL:    fmt.Sprintf("redis://%s", mr.Addr()),
		Prefix: "pedigree:",
	})
	require.NoError(t, err)

	store := record.NewMemoryStore[record.Attributes]()
	store.Put("alice",
		rec{ID: "A", Name: "Atlas", DamID: "B", SireID: "C"},
		rec{ID: "B", Name: "Bea", Sex: record.Female},
		rec{ID: "C", Sex: record.Male},
		rec{ID: "D", DamID: "E", SireID: "A"},
		rec{ID: "E", Sex: record.Female},
	)

	runner := pipeline.NewRunner[record.Attributes](store, c, nil, nil)
	t.Cleanup(func() { _ = runner.Close() })

	if opts.DefaultOwner == "" {
		opts.DefaultOwner = "alice"
	}
	if opts.Metrics == nil {
		opts.Metrics = promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	srv := New(runner, opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &fixture{srv: srv, runner: runner, url: ts.URL}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, f.url+path, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (f *fixture) scene(t *testing.T, method, path string, body any) sceneResponse {
	t.Helper()
	resp, data := f.do(t, method, path, body)
	require.Containsf(t, []int{http.StatusOK, http.StatusCreated}, resp.StatusCode, "body: %s", data)
	var out sceneResponse
	require.NoError(t, json.Unmarshal(data, &out))
	require.NotNil(t, out.Scene)
	return out
}

func (f *fixture) open(t *testing.T, root string) sceneResponse {
	t.Helper()
	return f.scene(t, http.MethodPost, "/sessions", map[string]string{"root": root})
}

func errorCode(t *testing.T, data []byte) pederrors.Code {
	t.Helper()
	var body httputil.ErrorBody
	require.NoError(t, json.Unmarshal(data, &body))
	return body.Code
}

func TestSessionLifecycle(t *testing.T) {
	f := newFixture(t, Options{})

	created := f.open(t, "A")
	assert.Equal(t, "alice", created.Owner)
	assert.Equal(t, render.StatusOK, created.Scene.Status)
	assert.Len(t, created.Scene.Nodes, 5)
	assert.Len(t, created.Scene.Edges, 4)
	assert.Equal(t, 1, f.srv.Sessions())

	base := "/sessions/" + created.ID
	got := f.scene(t, http.MethodGet, base+"/scene", nil)
	assert.Equal(t, created.Scene.Nodes, got.Scene.Nodes)

	clicked := f.scene(t, http.MethodPost, base+"/events/click", map[string]string{"id": "A", "type": "individual"})
	assert.Equal(t, "A", clicked.Scene.Selection.SelectedID)
	assert.Equal(t, "B", clicked.Scene.Selection.HighlightedDamID)
	assert.Equal(t, "C", clicked.Scene.Selection.HighlightedSireID)

	again := f.scene(t, http.MethodPost, base+"/events/click", map[string]string{"id": "A", "type": "individual"})
	assert.True(t, again.Scene.Selection.IsIdle(), "second click on the same node deselects")

	group := f.scene(t, http.MethodPost, base+"/events/click", map[string]string{"id": "group-A", "type": "group"})
	assert.True(t, group.Scene.Selection.IsIdle(), "group clicks are ignored")

	dragged := f.scene(t, http.MethodPost, base+"/events/drag", map[string]any{"id": "B", "x": 11.0, "y": 22.0})
	b, ok := dragged.Scene.Node("B")
	require.True(t, ok)
	assert.Equal(t, 11.0, b.Position.X)
	assert.Equal(t, 22.0, b.Position.Y)
	assert.True(t, b.Position.Pinned)

	rerooted := f.scene(t, http.MethodPut, base+"/root", map[string]string{"root": "B"})
	assert.Equal(t, "B", rerooted.Scene.RootID)

	resp, _ := f.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, f.srv.Sessions())

	resp, data := f.do(t, http.MethodGet, base+"/scene", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, pederrors.ErrCodeSessionNotFound, errorCode(t, data))

	resp, _ = f.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	saved := f.runner.LoadPositions(context.Background(), "alice", "B")
	pos, ok := saved.Get("B")
	require.True(t, ok, "positions are persisted under the final root")
	assert.Equal(t, 11.0, pos.X)
	assert.True(t, pos.Pinned)

	reopened := f.open(t, "B")
	b, ok = reopened.Scene.Node("B")
	require.True(t, ok)
	assert.Equal(t, 11.0, b.Position.X)
	assert.Equal(t, 22.0, b.Position.Y)
}

func TestCreateMissingRoot(t *testing.T) {
	f := newFixture(t, Options{})

	out := f.open(t, "Z")
	assert.Equal(t, render.StatusNotFound, out.Scene.Status)
	assert.Empty(t, out.Scene.Nodes)
	assert.Empty(t, out.Scene.Edges)

	other := f.scene(t, http.MethodPost, "/sessions", map[string]string{"owner": "bob", "root": "A"})
	assert.Equal(t, "bob", other.Owner)
	assert.Equal(t, render.StatusNotFound, other.Scene.Status)
}

func TestErrors(t *testing.T) {
	f := newFixture(t, Options{})
	id := f.open(t, "A").ID
	base := "/sessions/" + id

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   pederrors.Code
	}{
		{"malformed create", http.MethodPost, "/sessions", `{"root":`, http.StatusBadRequest, pederrors.ErrCodeInvalidInput},
		{"empty create", http.MethodPost, "/sessions", ``, http.StatusBadRequest, pederrors.ErrCodeInvalidInput},
		{"unknown field", http.MethodPost, "/sessions", `{"root":"A","depth":3}`, http.StatusBadRequest, pederrors.ErrCodeInvalidInput},
		{"empty root", http.MethodPost, "/sessions", map[string]string{"root": ""}, http.StatusBadRequest, pederrors.ErrCodeInvalidID},
		{"bad owner", http.MethodPost, "/sessions", map[string]string{"owner": "../x", "root": "A"}, http.StatusBadRequest, pederrors.ErrCodeInvalidInput},
		{"bad session id", http.MethodGet, "/sessions/nope/scene", nil, http.StatusBadRequest, pederrors.ErrCodeInvalidID},
		{"unknown session", http.MethodGet, "/sessions/6f1c1f8e-2f0b-4a57-9d51-3c1b8a6f0e42/scene", nil, http.StatusNotFound, pederrors.ErrCodeSessionNotFound},
		{"bad node type", http.MethodPost, base + "/events/click", map[string]string{"id": "A", "type": "planet"}, http.StatusBadRequest, pederrors.ErrCodeInvalidInput},
		{"click without id", http.MethodPost, base + "/events/click", map[string]string{"type": "individual"}, http.StatusBadRequest, pederrors.ErrCodeInvalidID},
		{"drag without y", http.MethodPost, base + "/events/drag", map[string]any{"id": "B", "x": 1}, http.StatusBadRequest, pederrors.ErrCodeInvalidInput},
		{"drag unknown node", http.MethodPost, base + "/events/drag", map[string]any{"id": "Q", "x": 1, "y": 2}, http.StatusNotFound, pederrors.ErrCodeNotFound},
		{"click unknown node", http.MethodPost, base + "/events/click", map[string]string{"id": "Q"}, http.StatusNotFound, pederrors.ErrCodeNotFound},
		{"empty reroot", http.MethodPut, base + "/root", map[string]string{"root": " "}, http.StatusBadRequest, pederrors.ErrCodeInvalidID},
		{"bad format", http.MethodGet, base + "/render?format=gif", nil, http.StatusBadRequest, pederrors.ErrCodeInvalidFormat},
		{"no route", http.MethodGet, "/nowhere", nil, http.StatusNotFound, pederrors.ErrCodeNotFound},
		{"wrong method", http.MethodPatch, "/healthz", nil, http.StatusMethodNotAllowed, pederrors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := f.do(t, tt.method, tt.path, tt.body)
			assert.Equalf(t, tt.status, resp.StatusCode, "body: %s", data)
			assert.Equal(t, tt.code, errorCode(t, data))
		})
	}

	got := f.scene(t, http.MethodGet, base+"/scene", nil)
	assert.True(t, got.Scene.Selection.IsIdle(), "rejected events leave the session untouched")
}

func TestCreateDuringClose(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Post(f.url+"/sessions", "application/json", strings.NewReader(`{"root":"A"}`))
			if err == nil {
				_ = resp.Body.Close()
			}
		}()
	}
	for range 20 {
		f.srv.Close(ctx)
	}
	wg.Wait()
	f.srv.Close(ctx)

	assert.Equal(t, 0, f.srv.Sessions())
	assert.Equal(t, 5, f.runner.LoadPositions(ctx, "alice", "A").Len())
}

func TestRender(t *testing.T) {
	f := newFixture(t, Options{})
	base := "/sessions/" + f.open(t, "A").ID

	resp, data := f.do(t, http.MethodGet, base+"/render?format=dot", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/vnd.graphviz", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(data), "digraph")
	etag := resp.Header.Get("ETag")
	assert.NotEmpty(t, etag)

	resp, data = f.do(t, http.MethodGet, base+"/render?format=JSON", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var scene render.Scene[record.Attributes]
	require.NoError(t, json.Unmarshal(data, &scene))
	assert.Equal(t, "A", scene.RootID)
	assert.Equal(t, etag, resp.Header.Get("ETag"))

	f.scene(t, http.MethodPost, base+"/events/click", map[string]string{"id": "A"})
	resp, _ = f.do(t, http.MethodGet, base+"/render?format=dot", nil)
	assert.NotEqual(t, etag, resp.Header.Get("ETag"), "selection changes the scene hash")
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	observability.NewPrometheusHooks(reg).Register()
	t.Cleanup(observability.Reset)

	f := newFixture(t, Options{Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})})
	f.open(t, "A")

	resp, data := f.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health healthResponse
	require.NoError(t, json.Unmarshal(data, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 1, health.Sessions)
	assert.NotEmpty(t, health.Build.Version)

	resp, data = f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := string(data)
	assert.Contains(t, body, `pedigree_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
	assert.Contains(t, body, `pedigree_http_requests_total{method="POST",route="/sessions",status="201"} 1`)
	assert.Contains(t, body, `pedigree_builds_total{result="ok"} 1`)
}

func TestSweepPersistsExpiredSessions(t *testing.T) {
	f := newFixture(t, Options{SessionTTL: 20 * time.Millisecond})
	id := f.open(t, "A").ID

	time.Sleep(50 * time.Millisecond)
	resp, data := f.do(t, http.MethodGet, "/sessions/"+id+"/scene", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, pederrors.ErrCodeSessionNotFound, errorCode(t, data))

	assert.Equal(t, 1, f.srv.Sweep(context.Background()))
	assert.Equal(t, 0, f.srv.Sessions())
	assert.Equal(t, 5, f.runner.LoadPositions(context.Background(), "alice", "A").Len())
}

func TestServeShutdown(t *testing.T) {
	f := newFixture(t, Options{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.srv.Serve(ctx, ln, time.Second) }()

	f.url = "http://" + ln.Addr().String()
	id := f.open(t, "D").ID
	f.scene(t, http.MethodPost, "/sessions/"+id+"/events/drag", map[string]any{"id": "D", "x": 5, "y": 6})

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	assert.Equal(t, 0, f.srv.Sessions())
	pos, ok := f.runner.LoadPositions(context.Background(), "alice", "D").Get("D")
	require.True(t, ok)
	assert.Equal(t, 5.0, pos.X)
}
