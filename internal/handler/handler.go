package handler

import (
	"github.com/user/reelrec/internal/config"
	"github.com/user/reelrec/internal/dataset"
	"github.com/user/reelrec/internal/model"
	"github.com/user/reelrec/internal/service"
)

// Handler HTTP 处理器
type Handler struct {
	Dataset   *dataset.Dataset
	Config    *config.Config
	Recommend *service.RecommendService
	Search    *service.SearchService
	Stats     *service.StatsService
	Poster    *service.PosterService
}

// NewHandler 创建处理器
func NewHandler(ds *dataset.Dataset, cfg *config.Config) *Handler {
	return &Handler{
		Dataset:   ds,
		Config:    cfg,
		Recommend: service.NewRecommendService(ds),
		Search:    service.NewSearchService(ds),
		Stats:     service.NewStatsService(ds),
		Poster:    service.NewPosterService(cfg),
	}
}

// MovieView 带海报地址的电影记录（对外返回结构）
type MovieView struct {
	model.MovieRecord
	Poster string `json:"poster,omitempty"`
}

// withPosters 逐部解析海报，单部失败只影响自己的占位图
func (h *Handler) withPosters(movies []model.MovieRecord) []MovieView {
	out := make([]MovieView, 0, len(movies))
	for _, m := range movies {
		out = append(out, MovieView{
			MovieRecord: m,
			Poster:      h.Poster.Resolve(m.ID),
		})
	}
	return out
}
