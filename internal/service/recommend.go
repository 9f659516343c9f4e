package service

import (
	"sort"

	"github.com/user/reelrec/internal/dataset"
	"github.com/user/reelrec/internal/model"
)

// 用于演员重合度查询的人数上限：只取主演阵容，避免群演稀释相似性
const topCastSize = 5

// RecommendService 推荐服务：相似度矩阵查询 + 属性重合度排名
// 所有方法都是无状态的只读查询，直接在规范表上计算
type RecommendService struct {
	ds *dataset.Dataset
}

// NewRecommendService 创建推荐服务
func NewRecommendService(ds *dataset.Dataset) *RecommendService {
	return &RecommendService{ds: ds}
}

type scoredRow struct {
	index int
	score float64
}

// TopSimilar 按预计算相似度返回与指定电影最接近的 k 部
// 排序规则：分数降序，同分按行号升序（保证输出可复现），不含查询电影本身
func (s *RecommendService) TopSimilar(title string, k int) ([]model.MovieRecord, error) {
	idx, err := s.ds.RowByTitle(title)
	if err != nil {
		return nil, err
	}
	row, err := s.ds.SimilarityRow(idx)
	if err != nil {
		return nil, err
	}

	pairs := make([]scoredRow, 0, len(row))
	for j, score := range row {
		if j == idx {
			continue // 自身相似度恒为最大值，排除
		}
		pairs = append(pairs, scoredRow{index: j, score: score})
	}
	// 稳定排序 + 按行号升序构造，天然满足同分时行号小者优先
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].score > pairs[j].score
	})

	return s.takeMovies(pairs, k), nil
}

// ByGenre 按类型重合度推荐：分数 = 查询电影与候选电影类型集合的交集大小
// 没有记录任何类型时返回空列表而不是随机结果
func (s *RecommendService) ByGenre(title string, k int) ([]model.MovieRecord, error) {
	idx, err := s.ds.RowByTitle(title)
	if err != nil {
		return nil, err
	}
	query := toSet(s.ds.Movies[idx].Genres)
	if len(query) == 0 {
		return []model.MovieRecord{}, nil
	}
	return s.rankByOverlap(idx, query, func(m *model.MovieRecord) []string {
		return m.Genres
	}, k), nil
}

// ByCast 按演员重合度推荐，查询集合只取前几位主演
func (s *RecommendService) ByCast(title string, k int) ([]model.MovieRecord, error) {
	idx, err := s.ds.RowByTitle(title)
	if err != nil {
		return nil, err
	}
	query := toSet(s.ds.Movies[idx].TopCast(topCastSize))
	if len(query) == 0 {
		return []model.MovieRecord{}, nil
	}
	return s.rankByOverlap(idx, query, func(m *model.MovieRecord) []string {
		return m.Cast
	}, k), nil
}

// ByDirector 返回同导演的其他电影：导演名精确匹配（区分大小写），按表序取前 k 部
func (s *RecommendService) ByDirector(title string, k int) ([]model.MovieRecord, error) {
	idx, err := s.ds.RowByTitle(title)
	if err != nil {
		return nil, err
	}
	director := s.ds.Movies[idx].Director()
	if director == "" {
		return []model.MovieRecord{}, nil
	}

	out := []model.MovieRecord{}
	for i := range s.ds.Movies {
		if i == idx {
			continue
		}
		if hasDirector(&s.ds.Movies[i], director) {
			out = append(out, s.ds.Movies[i])
			if len(out) >= k {
				break
			}
		}
	}
	return out, nil
}

// rankByOverlap 给除查询电影外的每一行打交集分并稳定排序
// 注意：交集为 0 的电影也可能进入结果补足 k 部，这是沿用的既定行为而非过滤遗漏
func (s *RecommendService) rankByOverlap(selfIdx int, query map[string]bool, attr func(*model.MovieRecord) []string, k int) []model.MovieRecord {
	pairs := make([]scoredRow, 0, s.ds.Len())
	for i := range s.ds.Movies {
		if i == selfIdx {
			continue
		}
		overlap := 0
		seen := make(map[string]bool)
		for _, v := range attr(&s.ds.Movies[i]) {
			if query[v] && !seen[v] {
				overlap++ // 集合交集大小，候选影片中的重复名只计一次
				seen[v] = true
			}
		}
		pairs = append(pairs, scoredRow{index: i, score: float64(overlap)})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].score > pairs[j].score
	})
	return s.takeMovies(pairs, k)
}

// takeMovies 取前 k 个行号并映射回电影记录
func (s *RecommendService) takeMovies(pairs []scoredRow, k int) []model.MovieRecord {
	if k < 0 {
		k = 0
	}
	if k > len(pairs) {
		k = len(pairs)
	}
	out := make([]model.MovieRecord, 0, k)
	for _, p := range pairs[:k] {
		out = append(out, s.ds.Movies[p.index])
	}
	return out
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func hasDirector(m *model.MovieRecord, name string) bool {
	for _, c := range m.Crew {
		if c.Job == "Director" && c.Name == name {
			return true
		}
	}
	return false
}
