package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/user/reelrec/internal/dataset"
	"github.com/user/reelrec/internal/model"
	"github.com/user/reelrec/internal/utils"
)

// 模糊搜索的最低相似度，低于该值的标题不进入候选
const fuzzyCutoff = 0.4

// SearchService 搜索与筛选服务：规范表上的只读视图
// 排序和分页都在行号副本上进行，不会改变底层表序（相似度矩阵依赖原始行号）
type SearchService struct {
	ds         *dataset.Dataset
	fuzzyCache *utils.LRUCache[[]model.MovieRecord]
}

// NewSearchService 创建搜索服务
func NewSearchService(ds *dataset.Dataset) *SearchService {
	return &SearchService{
		ds:         ds,
		fuzzyCache: utils.NewLRUCache[[]model.MovieRecord](1000, 1*time.Hour),
	}
}

// Fuzzy 按部分标题模糊搜索，返回相似度最高的 n 条记录
func (s *SearchService) Fuzzy(query string, n int) []model.MovieRecord {
	query = strings.TrimSpace(query)
	if query == "" || s.ds.Empty() || n <= 0 {
		return []model.MovieRecord{}
	}

	cacheKey := fmt.Sprintf("%s|%d", strings.ToLower(query), n)
	if cached, ok := s.fuzzyCache.Get(cacheKey); ok {
		// 返回副本，调用方改动结果不会污染缓存
		out := make([]model.MovieRecord, len(cached))
		copy(out, cached)
		return out
	}

	pairs := make([]scoredRow, 0, 16)
	for i := range s.ds.Movies {
		score := utils.TitleSimilarity(query, s.ds.Movies[i].Title)
		if score >= fuzzyCutoff {
			pairs = append(pairs, scoredRow{index: i, score: score})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].score > pairs[j].score
	})
	if n > len(pairs) {
		n = len(pairs)
	}

	result := make([]model.MovieRecord, 0, n)
	for _, p := range pairs[:n] {
		result = append(result, s.ds.Movies[p.index])
	}
	s.fuzzyCache.Set(cacheKey, result)

	// 返回副本，调用方改动结果不会污染缓存
	out := make([]model.MovieRecord, len(result))
	copy(out, result)
	return out
}

// FilterParams 筛选参数
type FilterParams struct {
	Genres   []string // 任一类型命中即保留，空表示不过滤
	YearFrom int      // 0 表示不限
	YearTo   int      // 0 表示不限
	SortBy   string   // 排序列，默认 vote_average
	Asc      bool     // 默认降序
	Page     int
	PageSize int
}

// FilterResult 筛选结果（带分页信息）
type FilterResult struct {
	Items    []model.MovieRecord `json:"items"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
	HasMore  bool                `json:"has_more"`
}

// Filter 按类型集合和年份区间筛选，再排序分页
func (s *SearchService) Filter(p FilterParams) FilterResult {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 200 {
		p.PageSize = 20
	}

	matched := []model.MovieRecord{}
	for i := range s.ds.Movies {
		m := &s.ds.Movies[i]
		if len(p.Genres) > 0 && !anyGenre(m, p.Genres) {
			continue
		}
		if p.YearFrom > 0 && (m.ReleaseYear == nil || *m.ReleaseYear < p.YearFrom) {
			continue
		}
		if p.YearTo > 0 && (m.ReleaseYear == nil || *m.ReleaseYear > p.YearTo) {
			continue
		}
		matched = append(matched, *m)
	}

	sortMovies(matched, p.SortBy, p.Asc)

	total := len(matched)
	start := (p.Page - 1) * p.PageSize
	if start > total {
		start = total
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}

	return FilterResult{
		Items:    matched[start:end],
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
		HasMore:  end < total,
	}
}

// Trending 按热度指标取前 n 部，指标不在白名单内时回落到 popularity
func (s *SearchService) Trending(metric string, n int) ([]model.MovieRecord, string) {
	switch metric {
	case "popularity", "vote_count", "revenue":
	default:
		metric = "popularity"
	}

	movies := s.copyMovies()
	sortMovies(movies, metric, false)
	if n > len(movies) {
		n = len(movies)
	}
	if n < 0 {
		n = 0
	}
	return movies[:n], metric
}

// TopRated 高分榜：可选类型过滤，按评分、票数双键降序
func (s *SearchService) TopRated(genre string, n int) []model.MovieRecord {
	movies := []model.MovieRecord{}
	for i := range s.ds.Movies {
		if genre != "" && !anyGenre(&s.ds.Movies[i], []string{genre}) {
			continue
		}
		movies = append(movies, s.ds.Movies[i])
	}

	sort.SliceStable(movies, func(i, j int) bool {
		a, b := floatOrZero(movies[i].VoteAverage), floatOrZero(movies[j].VoteAverage)
		if a != b {
			return a > b
		}
		return intOrZero(movies[i].VoteCount) > intOrZero(movies[j].VoteCount)
	})

	if n > len(movies) {
		n = len(movies)
	}
	if n < 0 {
		n = 0
	}
	return movies[:n]
}

func (s *SearchService) copyMovies() []model.MovieRecord {
	out := make([]model.MovieRecord, len(s.ds.Movies))
	copy(out, s.ds.Movies)
	return out
}

// sortMovies 按指定列稳定排序，缺失值始终排在最后
func sortMovies(movies []model.MovieRecord, sortBy string, asc bool) {
	key := sortKeyFunc(sortBy)
	sort.SliceStable(movies, func(i, j int) bool {
		vi, oki := key(&movies[i])
		vj, okj := key(&movies[j])
		if oki != okj {
			return oki // 有值的排前面
		}
		if !oki {
			return false
		}
		if asc {
			return vi < vj
		}
		return vi > vj
	})
}

// sortKeyFunc 返回取排序键的函数，第二个返回值表示该行是否有值
func sortKeyFunc(sortBy string) func(*model.MovieRecord) (float64, bool) {
	switch sortBy {
	case "popularity":
		return func(m *model.MovieRecord) (float64, bool) { return ptrVal(m.Popularity) }
	case "vote_count":
		return func(m *model.MovieRecord) (float64, bool) {
			if m.VoteCount == nil {
				return 0, false
			}
			return float64(*m.VoteCount), true
		}
	case "revenue":
		return func(m *model.MovieRecord) (float64, bool) { return ptrVal(m.Revenue) }
	case "budget":
		return func(m *model.MovieRecord) (float64, bool) { return ptrVal(m.Budget) }
	case "runtime":
		return func(m *model.MovieRecord) (float64, bool) { return ptrVal(m.Runtime) }
	case "release_year":
		return func(m *model.MovieRecord) (float64, bool) {
			if m.ReleaseYear == nil {
				return 0, false
			}
			return float64(*m.ReleaseYear), true
		}
	default: // vote_average
		return func(m *model.MovieRecord) (float64, bool) { return ptrVal(m.VoteAverage) }
	}
}

func ptrVal(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func floatOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func anyGenre(m *model.MovieRecord, genres []string) bool {
	for _, want := range genres {
		for _, g := range m.Genres {
			if g == want {
				return true
			}
		}
	}
	return false
}
