package stream

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameChunkLayout(t *testing.T) {
	chunk := FrameChunk([]byte{0xFF, 0xD8, 0xFF, 0xD9})

	want := "--frame\r\nContent-Type: image/jpeg\r\n\r\n\xff\xd8\xff\xd9\r\n"
	assert.Equal(t, want, string(chunk))
	assert.Equal(t, "multipart/x-mixed-replace; boundary=frame", ContentType)
}

func TestHubSubscribeRequiresLive(t *testing.T) {
	h := NewHub(0)

	_, err := h.Subscribe()
	require.ErrorIs(t, err, ErrNotLive)

	h.Open()
	sub, err := h.Subscribe()
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, 1, h.Viewers())
}

func TestHubPublishFansOut(t *testing.T) {
	h := NewHub(2)
	h.Open()

	a, err := h.Subscribe()
	require.NoError(t, err)
	b, err := h.Subscribe()
	require.NoError(t, err)

	h.Publish([]byte("one"))

	assert.Equal(t, []byte("one"), <-a.C)
	assert.Equal(t, []byte("one"), <-b.C)
	assert.Equal(t, uint64(1), h.Stats().Published)
}

func TestHubPublishNeverBlocks(t *testing.T) {
	h := NewHub(1)
	h.Open()

	slow, err := h.Subscribe()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		h.Publish([]byte("1"))
		h.Publish([]byte("2"))
		h.Publish([]byte("3"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow viewer")
	}

	stats := h.Stats().Subscribers[slow.ID]
	assert.Equal(t, uint64(1), stats.Sent)
	assert.Equal(t, uint64(2), stats.Dropped)
	assert.Equal(t, []byte("1"), <-slow.C)
}

func TestHubEndStreamClosesViewers(t *testing.T) {
	h := NewHub(4)
	h.Open()

	sub, err := h.Subscribe()
	require.NoError(t, err)

	h.Publish([]byte("last"))
	h.EndStream()

	chunk, ok := <-sub.C
	require.True(t, ok, "buffered chunk is flushed before close")
	assert.Equal(t, []byte("last"), chunk)

	_, ok = <-sub.C
	assert.False(t, ok)

	assert.False(t, h.Live())
	assert.Zero(t, h.Viewers())

	// late unsubscribe from the viewer goroutine is harmless
	h.Unsubscribe(sub.ID)

	_, err = h.Subscribe()
	assert.ErrorIs(t, err, ErrNotLive)
}

func TestStreamHTTPIdleEndsImmediately(t *testing.T) {
	h := NewHub(1)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/video_feed", nil)

	h.StreamHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ContentType, rec.Header().Get("Content-Type"))
	assert.Zero(t, rec.Body.Len())
}

func TestStreamHTTPWritesChunksUntilEnd(t *testing.T) {
	h := NewHub(4)
	h.Open()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/video_feed", nil)

	done := make(chan struct{})
	go func() {
		h.StreamHTTP(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return h.Viewers() == 1 }, time.Second, 5*time.Millisecond)

	first := FrameChunk([]byte("a"))
	second := FrameChunk([]byte("b"))
	h.Publish(first)
	h.Publish(second)
	h.EndStream()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not end after EndStream")
	}

	assert.Equal(t, string(first)+string(second), rec.Body.String())
}

type brokenWriter struct {
	header http.Header
}

func (b *brokenWriter) Header() http.Header { return b.header }
func (b *brokenWriter) WriteHeader(int) {}
func (b *brokenWriter) Flush() {}
func (b *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestStreamHTTPDropsFailingViewerOnly(t *testing.T) {
	h := NewHub(4)
	h.Open()

	healthy, err := h.Subscribe()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		h.StreamHTTP(&brokenWriter{header: http.Header{}}, httptest.NewRequest(http.MethodGet, "/", nil))
		close(done)
	}()

	require.Eventually(t, func() bool { return h.Viewers() == 2 }, time.Second, 5*time.Millisecond)
	h.Publish([]byte("x"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("failing viewer was not dropped")
	}

	assert.Equal(t, 1, h.Viewers())
	assert.True(t, h.Live())
	assert.Equal(t, []byte("x"), <-healthy.C)
}
