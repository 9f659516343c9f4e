package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/reelrec/internal/handler"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查（带数据集状态，方便运维确认降级情况）
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"movies":     h.Dataset.Len(),
			"has_matrix": h.Dataset.HasMatrix(),
		})
	})

	api := r.Group("/api")
	{
		api.GET("/movies/titles", h.Titles)
		api.GET("/movies/detail", h.MovieDetail)
		api.GET("/movies/filter", h.FilterMovies)
		api.GET("/movies/trending", h.TrendingMovies)
		api.GET("/movies/top-rated", h.TopRatedMovies)
		api.GET("/genres", h.GenreList)
		api.GET("/search", h.SearchMovies)

		// 推荐接口
		api.GET("/recommend/similar", h.SimilarMovies)
		api.GET("/recommend/genre", h.RecommendByGenre)
		api.GET("/recommend/cast", h.RecommendByCast)
		api.GET("/recommend/director", h.RecommendByDirector)

		// 统计接口
		api.GET("/stats/dashboard", h.DashboardStats)
	}
}
