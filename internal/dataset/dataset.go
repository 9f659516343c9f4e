package dataset

import (
	"errors"
	"sort"
	"strings"

	"github.com/user/reelrec/internal/model"
)

var (
	// ErrNotFound 标题在规范表中没有匹配行
	ErrNotFound = errors.New("movie not found")
	// ErrUnavailable 相似度矩阵未加载（预计算完成前的默认状态）
	ErrUnavailable = errors.New("similarity matrix unavailable")
	// ErrNoData 规范表为空（主数据源缺失）
	ErrNoData = errors.New("no movie data loaded")
)

// Dataset 规范化后的只读数据集，进程启动时构建一次后不再修改
// 行号即相似度矩阵的行/列下标，任何排序过滤都只能在副本上做
type Dataset struct {
	Movies []model.MovieRecord
	Matrix [][]float64 // 可能为 nil（降级模式）

	// 标题索引：保留同名电影的全部行号，查找时首个优先
	exactIndex map[string][]int
	lowerIndex map[string][]int
}

// New 构建数据集并建立标题索引
func New(movies []model.MovieRecord, matrix [][]float64) *Dataset {
	d := &Dataset{
		Movies:     movies,
		Matrix:     matrix,
		exactIndex: make(map[string][]int, len(movies)),
		lowerIndex: make(map[string][]int, len(movies)),
	}
	for i, m := range movies {
		d.exactIndex[m.Title] = append(d.exactIndex[m.Title], i)
		lower := strings.ToLower(m.Title)
		d.lowerIndex[lower] = append(d.lowerIndex[lower], i)
	}
	return d
}

// Len 规范表行数
func (d *Dataset) Len() int {
	return len(d.Movies)
}

// Empty 是否没有任何数据（调用方应返回降级提示）
func (d *Dataset) Empty() bool {
	return len(d.Movies) == 0
}

// HasMatrix 相似度矩阵是否可用
func (d *Dataset) HasMatrix() bool {
	return d.Matrix != nil
}

// RowByTitle 标题解析为行号：先精确匹配，无结果再做不区分大小写的匹配
// 同名电影取首行（已知限制，不做去重）
func (d *Dataset) RowByTitle(title string) (int, error) {
	if d.Empty() {
		return 0, ErrNoData
	}
	if rows, ok := d.exactIndex[title]; ok && len(rows) > 0 {
		return rows[0], nil
	}
	if rows, ok := d.lowerIndex[strings.ToLower(title)]; ok && len(rows) > 0 {
		return rows[0], nil
	}
	return 0, ErrNotFound
}

// MovieByTitle 按标题取电影记录
func (d *Dataset) MovieByTitle(title string) (*model.MovieRecord, error) {
	idx, err := d.RowByTitle(title)
	if err != nil {
		return nil, err
	}
	return &d.Movies[idx], nil
}

// SimilarityRow 读取第 i 行相似度分数；矩阵缺失时返回 ErrUnavailable
func (d *Dataset) SimilarityRow(i int) ([]float64, error) {
	if d.Matrix == nil {
		return nil, ErrUnavailable
	}
	if i < 0 || i >= len(d.Matrix) {
		return nil, ErrNotFound
	}
	return d.Matrix[i], nil
}

// AllGenres 返回全部类型（去重排序，供过滤界面使用）
func (d *Dataset) AllGenres() []string {
	seen := make(map[string]bool)
	for _, m := range d.Movies {
		for _, g := range m.Genres {
			seen[g] = true
		}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// YearBounds 返回上映年份的最小值和最大值（没有任何年份时返回 0, 0）
func (d *Dataset) YearBounds() (int, int) {
	minYear, maxYear := 0, 0
	for _, m := range d.Movies {
		if m.ReleaseYear == nil {
			continue
		}
		y := *m.ReleaseYear
		if minYear == 0 || y < minYear {
			minYear = y
		}
		if y > maxYear {
			maxYear = y
		}
	}
	return minYear, maxYear
}

// Titles 返回全部标题（按表序，供选择框使用）
func (d *Dataset) Titles() []string {
	out := make([]string, len(d.Movies))
	for i, m := range d.Movies {
		out[i] = m.Title
	}
	return out
}
