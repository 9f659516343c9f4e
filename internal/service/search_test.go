package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/reelrec/internal/dataset"
	"github.com/user/reelrec/internal/model"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func newSearchFixture() *dataset.Dataset {
	return dataset.New([]model.MovieRecord{
		{Title: "Inception", Genres: []string{"Action", "Sci-Fi"}, ReleaseYear: iptr(2010),
			VoteAverage: fptr(8.3), VoteCount: iptr(30000), Popularity: fptr(90), Revenue: fptr(8e8)},
		{Title: "Avatar", Genres: []string{"Action", "Fantasy"}, ReleaseYear: iptr(2009),
			VoteAverage: fptr(7.2), VoteCount: iptr(25000), Popularity: fptr(150), Revenue: fptr(2.7e9)},
		{Title: "The Godfather", Genres: []string{"Crime", "Drama"}, ReleaseYear: iptr(1972),
			VoteAverage: fptr(9.2), VoteCount: iptr(18000), Popularity: fptr(60), Revenue: fptr(2.5e8)},
		{Title: "Unrated Indie", Genres: []string{"Drama"}, ReleaseYear: iptr(2018)},
	}, nil)
}

func TestFuzzySearch(t *testing.T) {
	svc := NewSearchService(newSearchFixture())

	// 拼写错误也能命中
	result := svc.Fuzzy("inceptoin", 5)
	require.NotEmpty(t, result)
	assert.Equal(t, "Inception", result[0].Title)

	// 大小写无关
	result = svc.Fuzzy("the godfather", 5)
	require.NotEmpty(t, result)
	assert.Equal(t, "The Godfather", result[0].Title)
}

func TestFuzzySearchLimitsAndEmpty(t *testing.T) {
	svc := NewSearchService(newSearchFixture())

	assert.Empty(t, svc.Fuzzy("", 5))
	assert.Empty(t, svc.Fuzzy("   ", 5))

	result := svc.Fuzzy("a", 1)
	assert.LessOrEqual(t, len(result), 1)
}

func TestFuzzySearchCacheIsolation(t *testing.T) {
	svc := NewSearchService(newSearchFixture())

	first := svc.Fuzzy("inception", 5)
	require.NotEmpty(t, first)
	first[0].Title = "已被调用方改写"

	// 缓存命中返回的是副本，前一次调用方的改动不会泄漏
	second := svc.Fuzzy("inception", 5)
	require.NotEmpty(t, second)
	assert.Equal(t, "Inception", second[0].Title)
}

func TestFilterByGenreAndYear(t *testing.T) {
	svc := NewSearchService(newSearchFixture())

	result := svc.Filter(FilterParams{
		Genres:   []string{"Action"},
		YearFrom: 2010,
		Page:     1,
		PageSize: 20,
	})
	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Inception", result.Items[0].Title)
}

func TestFilterDefaultSortPutsMissingLast(t *testing.T) {
	svc := NewSearchService(newSearchFixture())

	result := svc.Filter(FilterParams{Page: 1, PageSize: 20})
	require.Len(t, result.Items, 4)
	// 默认按 vote_average 降序，无评分的排最后
	assert.Equal(t, "The Godfather", result.Items[0].Title)
	assert.Equal(t, "Unrated Indie", result.Items[3].Title)
}

func TestFilterPaging(t *testing.T) {
	svc := NewSearchService(newSearchFixture())

	page1 := svc.Filter(FilterParams{Page: 1, PageSize: 2})
	assert.Equal(t, 4, page1.Total)
	assert.Len(t, page1.Items, 2)
	assert.True(t, page1.HasMore)

	page2 := svc.Filter(FilterParams{Page: 2, PageSize: 2})
	assert.Len(t, page2.Items, 2)
	assert.False(t, page2.HasMore)

	// 超出总数的页返回空，不报错
	page9 := svc.Filter(FilterParams{Page: 9, PageSize: 2})
	assert.Empty(t, page9.Items)
}

func TestFilterDoesNotMutateTableOrder(t *testing.T) {
	ds := newSearchFixture()
	svc := NewSearchService(ds)

	_ = svc.Filter(FilterParams{SortBy: "popularity", Page: 1, PageSize: 20})

	// 排序只发生在副本上，底层行序（矩阵索引依据）保持不变
	assert.Equal(t, "Inception", ds.Movies[0].Title)
	assert.Equal(t, "Avatar", ds.Movies[1].Title)
}

func TestTrending(t *testing.T) {
	svc := NewSearchService(newSearchFixture())

	movies, metric := svc.Trending("revenue", 2)
	assert.Equal(t, "revenue", metric)
	require.Len(t, movies, 2)
	assert.Equal(t, "Avatar", movies[0].Title)

	// 未知指标回落到 popularity
	movies, metric = svc.Trending("nonsense", 1)
	assert.Equal(t, "popularity", metric)
	require.Len(t, movies, 1)
	assert.Equal(t, "Avatar", movies[0].Title)
}

func TestTopRated(t *testing.T) {
	svc := NewSearchService(newSearchFixture())

	movies := svc.TopRated("", 2)
	require.Len(t, movies, 2)
	assert.Equal(t, "The Godfather", movies[0].Title)
	assert.Equal(t, "Inception", movies[1].Title)

	// 类型过滤
	movies = svc.TopRated("Action", 5)
	require.Len(t, movies, 2)
	assert.Equal(t, "Inception", movies[0].Title)
	assert.Equal(t, "Avatar", movies[1].Title)
}
