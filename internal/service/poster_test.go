package service

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/reelrec/internal/config"
)

func posterConfig(baseURL string) *config.Config {
	return &config.Config{
		TMDBAPIKey:    "test-key",
		TMDBBaseURL:   baseURL,
		PosterBaseURL: "https://image.tmdb.org/t/p",
		PosterTimeout: 2 * time.Second,
		PosterRetries: 3,
	}
}

func TestLookupNilID(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	svc := NewPosterService(posterConfig(server.URL))

	// 无 ID 直接返回，不发起任何网络请求
	_, err := svc.Lookup(0)
	assert.ErrorIs(t, err, ErrNoMovieID)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestLookupSuccessAndCache(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"poster_path": "/abc.jpg"}`))
	}))
	defer server.Close()

	svc := NewPosterService(posterConfig(server.URL))

	url, err := svc.Lookup(42)
	require.NoError(t, err)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", url)

	// 第二次命中缓存，不再请求远端
	url, err = svc.Lookup(42)
	require.NoError(t, err)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", url)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestLookupNoPosterCached(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"poster_path": null}`))
	}))
	defer server.Close()

	svc := NewPosterService(posterConfig(server.URL))

	_, err := svc.Lookup(7)
	assert.ErrorIs(t, err, ErrNoPoster)

	// 确认无海报也缓存，避免反复打远端
	_, err = svc.Lookup(7)
	assert.ErrorIs(t, err, ErrNoPoster)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestLookupNotFoundNoRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewPosterService(posterConfig(server.URL))

	_, err := svc.Lookup(9)
	assert.ErrorIs(t, err, ErrRemote)
	// 404 不是瞬时故障，不重试
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// 远端失败不缓存，后续请求会再打一次
	_, err = svc.Lookup(9)
	assert.ErrorIs(t, err, ErrRemote)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestLookupRetriesTransient(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"poster_path": "/retry.jpg"}`))
	}))
	defer server.Close()

	svc := NewPosterService(posterConfig(server.URL))

	url, err := svc.Lookup(11)
	require.NoError(t, err)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/retry.jpg", url)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestLookupMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	svc := NewPosterService(posterConfig(server.URL))

	_, err := svc.Lookup(13)
	assert.ErrorIs(t, err, ErrRemote)
}

func TestResolveCollapsesFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewPosterService(posterConfig(server.URL))

	// 渲染层只拿到空串，由界面显示占位图
	assert.Equal(t, "", svc.Resolve(0))
	assert.Equal(t, "", svc.Resolve(99))
}
