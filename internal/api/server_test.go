package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emotion-worker-go/internal/config"
	"emotion-worker-go/internal/models"
	"emotion-worker-go/internal/services/events"
	"emotion-worker-go/internal/services/history"
	"emotion-worker-go/internal/services/pipeline"
	"emotion-worker-go/internal/services/stream"
)

type fakeController struct {
	mu       sync.Mutex
	running  bool
	startErr error
	starts   int
	history  *history.Store
	hub      *stream.Hub
}

func (f *fakeController) Start(context.Context) (pipeline.StartResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if f.startErr != nil {
		return pipeline.Started, f.startErr
	}
	if f.running {
		return pipeline.AlreadyRunning, nil
	}
	f.running = true
	f.hub.Open()
	return pipeline.Started, nil
}

func (f *fakeController) Stop() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	was := f.running
	f.running = false
	f.hub.EndStream()
	return was
}

func (f *fakeController) Status() models.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.Status{IsRunning: f.running, CurrentEmotion: models.NoFaceLabel, TotalDetections: f.history.Len()}
}

type testEnv struct {
	router  http.Handler
	ctrl    *fakeController
	history *history.Store
	hub     *stream.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Version:     "test",
		Environment: "test",
		InstanceID:  "emotion-worker-test",
		Port:        0,
		RecentLimit: 20,
		SwaggerHost: "localhost:5000",
	}
	store := history.NewStore(history.DefaultCapacity)
	hub := stream.NewHub(4)
	ctrl := &fakeController{history: store, hub: hub}
	broker := events.NewBroker()
	t.Cleanup(broker.Close)

	srv := NewServer(cfg, Deps{
		Pipeline: ctrl,
		Hub:      hub,
		History:  store,
		Events:   broker,
	})
	return &testEnv{router: srv.Handler(), ctrl: ctrl, history: store, hub: hub}
}

func (e *testEnv) do(method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestStartStopCycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/start")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "started", decode(t, rec)["status"])

	rec = env.do(http.MethodPost, "/api/start")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "already_running", decode(t, rec)["status"])

	rec = env.do(http.MethodGet, "/api/status")
	assert.JSONEq(t, `{"is_running":true,"current_emotion":"No face detected","total_detections":0}`, rec.Body.String())

	rec = env.do(http.MethodPost, "/api/stop")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stopped", decode(t, rec)["status"])

	// idempotent
	rec = env.do(http.MethodPost, "/api/stop")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stopped", decode(t, rec)["status"])
	assert.False(t, env.ctrl.Status().IsRunning)
}

func TestStartWithoutCamera(t *testing.T) {
	env := newTestEnv(t)
	env.ctrl.startErr = fmt.Errorf("failed to start pipeline: %w", pipeline.ErrNoDevice)

	rec := env.do(http.MethodPost, "/api/start")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["message"], "no working camera found")
}

func TestEmotionsAndStats(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/emotions")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = env.do(http.MethodGet, "/api/stats")
	assert.JSONEq(t, `{"message":"No data available"}`, rec.Body.String())

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		label := "Happy"
		if i%5 == 0 {
			label = "Sad"
		}
		env.history.Record(models.DetectionEvent{Timestamp: base.Add(time.Duration(i) * time.Second), Emotion: label, Confidence: 0.8})
	}

	rec = env.do(http.MethodGet, "/api/emotions")
	var recent []models.DetectionEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recent))
	require.Len(t, recent, 20)
	assert.True(t, base.Add(5*time.Second).Equal(recent[0].Timestamp))
	assert.True(t, base.Add(24*time.Second).Equal(recent[19].Timestamp))

	rec = env.do(http.MethodGet, "/api/stats")
	var stats models.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 25, stats.TotalDetections)
	assert.Equal(t, map[string]int{"Sad": 5, "Happy": 20}, stats.EmotionCounts)
	assert.InDelta(t, 80.0, stats.EmotionPercentages["Happy"], 1e-9)
	require.NotNil(t, stats.MostCommon)
	assert.Equal(t, "Happy", *stats.MostCommon)
}

func TestVideoFeedWhileIdle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/video_feed")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, stream.ContentType, rec.Header().Get("Content-Type"))
	assert.Zero(t, rec.Body.Len())
}

func TestVideoFeedStreamsUntilStop(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/start").Code)

	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/video_feed", nil))
		close(done)
	}()
	require.Eventually(t, func() bool { return env.hub.Viewers() == 1 }, time.Second, 5*time.Millisecond)

	chunk := stream.FrameChunk([]byte{0xFF, 0xD8, 0xFF, 0xD9})
	env.hub.Publish(chunk)
	env.do(http.MethodPost, "/api/stop")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("video feed did not end after stop")
	}
	assert.Equal(t, string(chunk), rec.Body.String())
}

func TestServiceEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])

	rec = env.do(http.MethodGet, "/")
	assert.Equal(t, "emotion-worker-test", decode(t, rec)["instance_id"])

	rec = env.do(http.MethodGet, "/system/stats")
	assert.Equal(t, http.StatusOK, rec.Code)
	stats := decode(t, rec)["stats"].(map[string]interface{})
	assert.Contains(t, stats, "stream")
	assert.Equal(t, float64(0), stats["event_clients"])

	rec = env.do(http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "emotion_worker_http_requests_total")

	rec = env.do(http.MethodGet, "/api/info")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSOnAPIRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/status")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = env.do(http.MethodOptions, "/api/start")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestServerWithoutEventBroker(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{Environment: "test", InstanceID: "emotion-worker-test", RecentLimit: 20}
	store := history.NewStore(history.DefaultCapacity)
	hub := stream.NewHub(4)
	env := &testEnv{
		router: NewServer(cfg, Deps{
			Pipeline: &fakeController{history: store, hub: hub},
			Hub:      hub,
			History:  store,
		}).Handler(),
		history: store,
		hub:     hub,
	}

	rec := env.do(http.MethodGet, "/system/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode(t, rec)["stats"].(map[string]interface{})
	assert.Contains(t, stats, "stream")
	assert.NotContains(t, stats, "event_clients")

	rec = env.do(http.MethodGet, "/api/events")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
