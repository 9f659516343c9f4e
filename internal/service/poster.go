package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/user/reelrec/internal/config"
	"github.com/user/reelrec/internal/utils"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNoMovieID 没有可用的电影 ID，不发起任何网络请求
	ErrNoMovieID = errors.New("no movie id")
	// ErrNoPoster 远端正常响应但没有海报
	ErrNoPoster = errors.New("no poster available")
	// ErrRemote 海报服务请求失败（超时、非 2xx、响应格式错误）
	ErrRemote = errors.New("poster service failure")
)

// PosterService TMDB 海报解析，带重试、进程级缓存和并发合并
type PosterService struct {
	cfg    *config.Config
	client *http.Client
	cache  *utils.LRUCache[string] // ID -> 海报 URL，空串表示确认无海报
	group  singleflight.Group
}

// NewPosterService 创建海报服务
func NewPosterService(cfg *config.Config) *PosterService {
	return &PosterService{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.PosterTimeout,
		},
		// ttl 为 0：解析结果在进程生命周期内有效
		cache: utils.NewLRUCache[string](10000, 0),
	}
}

// Lookup 按电影 ID 解析海报 URL
// 错误可区分：ErrNoMovieID（无 ID）、ErrNoPoster（确认无海报）、ErrRemote（远端失败）
// 成功和确认无海报的结果按 ID 缓存；远端失败不缓存，后续请求可重试
func (s *PosterService) Lookup(movieID int) (string, error) {
	if movieID <= 0 {
		return "", ErrNoMovieID
	}

	key := strconv.Itoa(movieID)
	if cached, ok := s.cache.Get(key); ok {
		if cached == "" {
			return "", ErrNoPoster
		}
		return cached, nil
	}

	// singleflight 合并同一 ID 的并发请求
	val, err, _ := s.group.Do(key, func() (interface{}, error) {
		url, err := s.fetchPosterURL(movieID)
		if err != nil {
			if errors.Is(err, ErrNoPoster) {
				s.cache.Set(key, "")
			}
			return "", err
		}
		s.cache.Set(key, url)
		return url, nil
	})
	if err != nil {
		return "", err
	}
	return val.(string), nil
}

// Resolve 渲染层入口：任何失败都折叠为空字符串，由界面显示占位图
func (s *PosterService) Resolve(movieID int) string {
	url, err := s.Lookup(movieID)
	if err != nil {
		if errors.Is(err, ErrRemote) {
			log.Printf("[Poster] 解析失败 (ID: %d): %v", movieID, err)
		}
		return ""
	}
	return url
}

type tmdbMovieResponse struct {
	PosterPath string `json:"poster_path"`
}

// fetchPosterURL 请求 TMDB 详情接口并拼出海报地址
// 429/5xx 按瞬时故障退避重试，其余状态码直接失败
func (s *PosterService) fetchPosterURL(movieID int) (string, error) {
	url := fmt.Sprintf("%s/movie/%d?api_key=%s&language=en-US",
		s.cfg.TMDBBaseURL, movieID, s.cfg.TMDBAPIKey)

	var result tmdbMovieResponse
	err := retry.Do(
		func() error {
			resp, err := s.client.Get(url)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrRemote, err)
			}
			defer resp.Body.Close()

			if isTransientStatus(resp.StatusCode) {
				return fmt.Errorf("%w: 状态码 %d", ErrRemote, resp.StatusCode)
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return retry.Unrecoverable(fmt.Errorf("%w: 状态码 %d", ErrRemote, resp.StatusCode))
			}
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				return retry.Unrecoverable(fmt.Errorf("%w: 解析响应失败: %v", ErrRemote, err))
			}
			return nil
		},
		retry.Attempts(uint(s.cfg.PosterRetries)),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", err
	}

	if result.PosterPath == "" {
		return "", ErrNoPoster
	}
	return s.cfg.PosterBaseURL + "/w500" + result.PosterPath, nil
}

func isTransientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
