package service

import (
	"sort"

	"github.com/user/reelrec/internal/dataset"
)

// StatsService 数据集聚合统计（仪表盘数据）
type StatsService struct {
	ds *dataset.Dataset
}

// NewStatsService 创建统计服务
func NewStatsService(ds *dataset.Dataset) *StatsService {
	return &StatsService{ds: ds}
}

// NameCount 名称出现次数
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// GenreRating 类型平均评分
type GenreRating struct {
	Genre     string  `json:"genre"`
	AvgRating float64 `json:"avg_rating"`
}

// YearTrend 逐年统计
type YearTrend struct {
	Year          int     `json:"year"`
	Count         int     `json:"count"`
	AvgPopularity float64 `json:"avg_popularity"`
}

// Dashboard 仪表盘聚合结果
type Dashboard struct {
	TopGenres     []NameCount   `json:"top_genres"`
	TopActors     []NameCount   `json:"top_actors"`
	TopDirectors  []NameCount   `json:"top_directors"`
	RatingByGenre []GenreRating `json:"rating_by_genre"`
	YearlyTrend   []YearTrend   `json:"yearly_trend"`
}

// Overview 一次性计算全部仪表盘聚合（结果由调用方缓存）
func (s *StatsService) Overview(topN int) *Dashboard {
	if topN <= 0 {
		topN = 10
	}
	return &Dashboard{
		TopGenres:     s.TopGenres(topN),
		TopActors:     s.TopActors(20),
		TopDirectors:  s.TopDirectors(20),
		RatingByGenre: s.RatingByGenre(),
		YearlyTrend:   s.YearlyTrend(),
	}
}

// TopGenres 出现次数最多的类型
func (s *StatsService) TopGenres(n int) []NameCount {
	counts := make(map[string]int)
	for _, m := range s.ds.Movies {
		for _, g := range m.Genres {
			counts[g]++
		}
	}
	return topCounts(counts, n)
}

// TopActors 出镜最多的演员，每部电影只统计前几位主演
func (s *StatsService) TopActors(n int) []NameCount {
	counts := make(map[string]int)
	for _, m := range s.ds.Movies {
		for _, name := range m.TopCast(topCastSize) {
			counts[name]++
		}
	}
	return topCounts(counts, n)
}

// TopDirectors 作品最多的导演
func (s *StatsService) TopDirectors(n int) []NameCount {
	counts := make(map[string]int)
	for _, m := range s.ds.Movies {
		for _, c := range m.Crew {
			if c.Job == "Director" {
				counts[c.Name]++
			}
		}
	}
	return topCounts(counts, n)
}

// RatingByGenre 各类型平均评分（降序）
func (s *StatsService) RatingByGenre() []GenreRating {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, m := range s.ds.Movies {
		if m.VoteAverage == nil {
			continue
		}
		for _, g := range m.Genres {
			sums[g] += *m.VoteAverage
			counts[g]++
		}
	}

	out := make([]GenreRating, 0, len(sums))
	for g, sum := range sums {
		out = append(out, GenreRating{Genre: g, AvgRating: sum / float64(counts[g])})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AvgRating != out[j].AvgRating {
			return out[i].AvgRating > out[j].AvgRating
		}
		return out[i].Genre < out[j].Genre
	})
	return out
}

// YearlyTrend 逐年上映数量和平均热度（按年份升序）
func (s *StatsService) YearlyTrend() []YearTrend {
	counts := make(map[int]int)
	popSums := make(map[int]float64)
	popCounts := make(map[int]int)
	for _, m := range s.ds.Movies {
		if m.ReleaseYear == nil {
			continue
		}
		y := *m.ReleaseYear
		counts[y]++
		if m.Popularity != nil {
			popSums[y] += *m.Popularity
			popCounts[y]++
		}
	}

	out := make([]YearTrend, 0, len(counts))
	for y, c := range counts {
		trend := YearTrend{Year: y, Count: c}
		if popCounts[y] > 0 {
			trend.AvgPopularity = popSums[y] / float64(popCounts[y])
		}
		out = append(out, trend)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// topCounts 计数表取前 n，同次数按名称排序保证输出稳定
func topCounts(counts map[string]int, n int) []NameCount {
	out := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, NameCount{Name: name, Count: count})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n > len(out) {
		n = len(out)
	}
	return out[:n]
}
