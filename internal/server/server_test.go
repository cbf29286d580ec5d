// SPDX-License-Identifier: EPL-2.0

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ik5/audmark"
	"github.com/ik5/audmark/internal/audiotest"
	"github.com/ik5/audmark/internal/tempscope"
	"github.com/ik5/audmark/pipeline"
	"github.com/ik5/audmark/watermark/codec"
	"github.com/ik5/audmark/watermark/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelperProcess(t *testing.T) { audiotest.MaybeRunFakeCodec() }

func init() { gin.SetMode(gin.TestMode) }

func newTestServer(t *testing.T, maxBody int64) *Server {
	t.Helper()

	bin, args, env := audiotest.FakeCodecCommand()
	scope := tempscope.New(t.TempDir(), nil)
	p := pipeline.New(pipeline.Options{
		CodecDecoder: audmark.NewDecoder(audmark.WithSampleRate(codec.DefaultSampleRate)),
		Registry: registry.New(registry.Options{
			Codec: codec.Options{Binary: bin, Args: args, Env: env, Scope: scope},
		}, nil),
		Scope: scope,
	}, nil)
	return New(p, maxBody, nil)
}

func do(t *testing.T, s *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, 1<<20)
	w, body := do(t, s, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", body["status"])
	assert.Contains(t, body, "uptime")

	backends, ok := body["backends"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, backends["neural"])
	assert.Equal(t, true, backends["external-codec"])
	assert.Equal(t, []any{"aac", "aiff", "mp3", "ogg", "wav"}, body["formats"])
}

func TestEmbedDetectOverHTTP(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, 50<<20)
	clip := pipeline.DataURI("audio/wav", audiotest.SilenceWAV(44100, 1, 44100))

	w, emb := do(t, s, http.MethodPost, "/api/embed", pipeline.EmbedRequest{
		Audio: clip, WatermarkID: "AD-001", Method: "external-codec",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, emb["success"])
	assert.Equal(t, "AD-001", emb["watermarkId"])
	marked, _ := emb["watermarkedAudio"].(string)
	require.NotEmpty(t, marked)

	w, det := do(t, s, http.MethodPost, "/api/detect", pipeline.DetectRequest{Audio: marked, Method: "external-codec"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, det["detected"])
	assert.Equal(t, "AD-001", det["watermarkId"])
	assert.Equal(t, 100.0, det["confidence"])
	assert.Equal(t, "external-codec", det["method"])

	for _, path := range []string{"/detect-id", "/api/extract"} {
		w, legacy := do(t, s, http.MethodPost, path, map[string]string{"audio": marked})
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "AD-001", legacy["watermarkId"], path)
		assert.Equal(t, "external-codec", legacy["method"], path)
	}
}

func TestDetectNegative(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, 50<<20)
	clip := pipeline.DataURI("audio/wav", audiotest.NoiseWAV(16000, 16000, 0.2, 3))

	w, det := do(t, s, http.MethodPost, "/api/detect", pipeline.DetectRequest{Audio: clip})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, det["detected"])
	assert.Nil(t, det["watermarkId"])
	assert.Equal(t, "neural", det["method"])
}

func TestErrors(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, 4096)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		kind   string
	}{
		{name: "missing audio", path: "/api/embed", body: map[string]string{}, status: http.StatusBadRequest, kind: "malformed_input"},
		{name: "invalid json", path: "/api/detect", body: "{not json", status: http.StatusBadRequest, kind: "malformed_input"},
		{name: "bad base64", path: "/api/detect", body: map[string]string{"audio": "@@@@"}, status: http.StatusBadRequest, kind: "malformed_input"},
		{name: "unknown method", path: "/api/detect", body: map[string]string{"audio": "AAAA", "method": "lsb"}, status: http.StatusBadRequest, kind: "malformed_input"},
		{name: "non-audio", path: "/api/detect", body: map[string]string{"audio": "data:image/png;base64,AAAA"}, status: http.StatusUnsupportedMediaType, kind: "unsupported_format"},
		{name: "corrupt audio", path: "/api/detect", body: map[string]string{"audio": "data:audio/wav;base64,AAAA"}, status: http.StatusBadRequest, kind: "malformed_audio"},
		{name: "too large", path: "/api/embed", body: map[string]string{"audio": strings.Repeat("A", 8192)}, status: http.StatusRequestEntityTooLarge, kind: "malformed_input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, body := do(t, s, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.kind, body["kind"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	w, _ := do(t, newTestServer(t, 1024), http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListenAndServeShutdown(t *testing.T) {
	t.Parallel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	s := newTestServer(t, 1024)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
