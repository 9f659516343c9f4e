package handler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/reelrec/internal/dataset"
	"github.com/user/reelrec/internal/model"
	"github.com/user/reelrec/internal/service"
	"github.com/user/reelrec/internal/utils"
)

// Titles 全部电影标题（按表序，供选择框使用）
// GET /api/movies/titles
func (h *Handler) Titles(c *gin.Context) {
	if h.Dataset.Empty() {
		utils.ServiceUnavailable(c, "电影数据未加载")
		return
	}
	utils.Success(c, h.Dataset.Titles())
}

// MovieDetail 电影详情（含海报地址）
// GET /api/movies/detail?title=xxx
func (h *Handler) MovieDetail(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		utils.BadRequest(c, "title 不能为空")
		return
	}

	movie, err := h.Dataset.MovieByTitle(title)
	if err != nil {
		h.renderLookupError(c, err)
		return
	}
	utils.Success(c, MovieView{
		MovieRecord: *movie,
		Poster:      h.Poster.Resolve(movie.ID),
	})
}

// SimilarMovies 基于相似度矩阵的推荐
// GET /api/recommend/similar?title=xxx&k=5
func (h *Handler) SimilarMovies(c *gin.Context) {
	title, k, ok := h.recommendParams(c)
	if !ok {
		return
	}
	movies, err := h.Recommend.TopSimilar(title, k)
	if err != nil {
		h.renderLookupError(c, err)
		return
	}
	utils.Success(c, h.withPosters(movies))
}

// RecommendByGenre 按类型重合度推荐
// GET /api/recommend/genre?title=xxx&k=5
func (h *Handler) RecommendByGenre(c *gin.Context) {
	h.renderOverlap(c, h.Recommend.ByGenre)
}

// RecommendByCast 按演员重合度推荐
// GET /api/recommend/cast?title=xxx&k=5
func (h *Handler) RecommendByCast(c *gin.Context) {
	h.renderOverlap(c, h.Recommend.ByCast)
}

// RecommendByDirector 同导演作品推荐
// GET /api/recommend/director?title=xxx&k=5
func (h *Handler) RecommendByDirector(c *gin.Context) {
	h.renderOverlap(c, h.Recommend.ByDirector)
}

func (h *Handler) renderOverlap(c *gin.Context, fn func(string, int) ([]model.MovieRecord, error)) {
	title, k, ok := h.recommendParams(c)
	if !ok {
		return
	}
	movies, err := fn(title, k)
	if err != nil {
		h.renderLookupError(c, err)
		return
	}
	utils.Success(c, h.withPosters(movies))
}

// recommendParams 解析推荐接口的公共参数
func (h *Handler) recommendParams(c *gin.Context) (string, int, bool) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		utils.BadRequest(c, "title 不能为空")
		return "", 0, false
	}
	k, _ := strconv.Atoi(c.DefaultQuery("k", "5"))
	if k < 1 || k > 50 {
		k = 5
	}
	return title, k, true
}

// SearchMovies 模糊搜索
// GET /api/search?q=xxx&n=10
func (h *Handler) SearchMovies(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		utils.BadRequest(c, "搜索关键词不能为空")
		return
	}
	if h.Dataset.Empty() {
		utils.ServiceUnavailable(c, "电影数据未加载")
		return
	}
	n, _ := strconv.Atoi(c.DefaultQuery("n", "10"))
	if n < 1 || n > 50 {
		n = 10
	}
	utils.Success(c, h.Search.Fuzzy(query, n))
}

// FilterMovies 按类型和年份区间筛选（支持排序分页）
// GET /api/movies/filter?genres=Action,Drama&year_from=1990&year_to=2020&sort=vote_average&order=desc&page=1&page_size=20
func (h *Handler) FilterMovies(c *gin.Context) {
	if h.Dataset.Empty() {
		utils.ServiceUnavailable(c, "电影数据未加载")
		return
	}

	var genres []string
	if raw := strings.TrimSpace(c.Query("genres")); raw != "" {
		for _, g := range strings.Split(raw, ",") {
			if g = strings.TrimSpace(g); g != "" {
				genres = append(genres, g)
			}
		}
	}
	yearFrom, _ := strconv.Atoi(c.DefaultQuery("year_from", "0"))
	yearTo, _ := strconv.Atoi(c.DefaultQuery("year_to", "0"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result := h.Search.Filter(service.FilterParams{
		Genres:   genres,
		YearFrom: yearFrom,
		YearTo:   yearTo,
		SortBy:   c.DefaultQuery("sort", "vote_average"),
		Asc:      c.Query("order") == "asc",
		Page:     page,
		PageSize: pageSize,
	})
	utils.Success(c, result)
}

// TrendingMovies 热门榜单
// GET /api/movies/trending?metric=popularity&n=10
func (h *Handler) TrendingMovies(c *gin.Context) {
	if h.Dataset.Empty() {
		utils.ServiceUnavailable(c, "电影数据未加载")
		return
	}
	n, _ := strconv.Atoi(c.DefaultQuery("n", "10"))
	if n < 1 || n > 50 {
		n = 10
	}
	movies, metric := h.Search.Trending(c.Query("metric"), n)
	utils.Success(c, gin.H{
		"metric": metric,
		"items":  h.withPosters(movies),
	})
}

// TopRatedMovies 高分榜单
// GET /api/movies/top-rated?genre=Action&n=10
func (h *Handler) TopRatedMovies(c *gin.Context) {
	if h.Dataset.Empty() {
		utils.ServiceUnavailable(c, "电影数据未加载")
		return
	}
	n, _ := strconv.Atoi(c.DefaultQuery("n", "10"))
	if n < 1 || n > 50 {
		n = 10
	}
	movies := h.Search.TopRated(strings.TrimSpace(c.Query("genre")), n)
	utils.Success(c, h.withPosters(movies))
}

// GenreList 全部类型和年份范围（筛选界面的数据源）
// GET /api/genres
func (h *Handler) GenreList(c *gin.Context) {
	if h.Dataset.Empty() {
		utils.ServiceUnavailable(c, "电影数据未加载")
		return
	}
	minYear, maxYear := h.Dataset.YearBounds()
	utils.Success(c, gin.H{
		"genres":   h.Dataset.AllGenres(),
		"min_year": minYear,
		"max_year": maxYear,
	})
}

// DashboardStats 仪表盘聚合统计（数据集不变，结果缓存较久）
// GET /api/stats/dashboard?top_n=10
func (h *Handler) DashboardStats(c *gin.Context) {
	if h.Dataset.Empty() {
		utils.ServiceUnavailable(c, "电影数据未加载")
		return
	}
	topN, _ := strconv.Atoi(c.DefaultQuery("top_n", "10"))

	cacheKey := "stats:dashboard:" + strconv.Itoa(topN)
	if cached, found := utils.CacheGet(cacheKey); found {
		utils.Success(c, cached)
		return
	}

	overview := h.Stats.Overview(topN)
	utils.CacheSet(cacheKey, overview, 12*time.Hour)
	utils.Success(c, overview)
}

// renderLookupError 查询错误统一映射：结构性失败显式返回，调用方据此提示
func (h *Handler) renderLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dataset.ErrNoData):
		utils.ServiceUnavailable(c, "电影数据未加载")
	case errors.Is(err, dataset.ErrUnavailable):
		utils.ServiceUnavailable(c, "相似度矩阵未加载，该功能暂不可用")
	case errors.Is(err, dataset.ErrNotFound):
		utils.NotFound(c, "未找到该电影")
	default:
		utils.InternalServerError(c, "")
	}
}
