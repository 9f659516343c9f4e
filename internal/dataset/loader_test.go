package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/reelrec/internal/config"
)

// testConfig 指向临时目录的配置，文件按需写入
func testConfig(dir string) *config.Config {
	return &config.Config{
		DataDir:          dir,
		MoviesPath:       filepath.Join(dir, "movies.json"),
		MovieColumnsPath: filepath.Join(dir, "movie_columns.json"),
		MoviesCSVPath:    filepath.Join(dir, "tmdb_5000_movies.csv"),
		CreditsCSVPath:   filepath.Join(dir, "tmdb_5000_credits.csv"),
		SimilarityPath:   filepath.Join(dir, "similarity.csv"),
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeCSV(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
}

func TestLoadRowJSON(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, cfg.MoviesPath, `[
		{"movie_id": 19995, "title": "Avatar", "overview": "蓝色星球",
		 "genres": "[{'id': 28, 'name': 'Action'}]",
		 "release_date": "2009-12-10", "runtime": 162, "vote_average": 7.2, "vote_count": 11800},
		{"id": 285, "title": "Pirates", "release_date": "bad-date"}
	]`)

	ds := Load(cfg)
	require.Equal(t, 2, ds.Len())

	avatar := ds.Movies[0]
	assert.Equal(t, 19995, avatar.ID)
	assert.Equal(t, "Avatar", avatar.Title)
	assert.Equal(t, []string{"Action"}, avatar.Genres)
	require.NotNil(t, avatar.ReleaseYear)
	assert.Equal(t, 2009, *avatar.ReleaseYear)
	require.NotNil(t, avatar.Runtime)
	assert.Equal(t, 162.0, *avatar.Runtime)
	require.NotNil(t, avatar.VoteCount)
	assert.Equal(t, 11800, *avatar.VoteCount)

	// id 列名兼容：id 也能识别为规范 ID
	pirates := ds.Movies[1]
	assert.Equal(t, 285, pirates.ID)
	// 非法日期 -> 年份为 nil，不报错
	assert.Nil(t, pirates.ReleaseYear)
	// 缺失数值列回填为 nil，下游可以无条件访问
	assert.Nil(t, pirates.Budget)
	assert.Nil(t, pirates.Popularity)
	// 缺失嵌套列回填为空列表
	assert.Empty(t, pirates.Genres)
	assert.Empty(t, pirates.Cast)
}

func TestLoadColumnJSONFallback(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	// 行式主数据缺失，回退到列式
	writeFile(t, cfg.MovieColumnsPath, `{
		"movie_id": [1, 2],
		"title": ["Alpha", "Beta"],
		"vote_average": [8.1, 6.4]
	}`)

	ds := Load(cfg)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, "Alpha", ds.Movies[0].Title)
	assert.Equal(t, 2, ds.Movies[1].ID)
	require.NotNil(t, ds.Movies[1].VoteAverage)
	assert.Equal(t, 6.4, *ds.Movies[1].VoteAverage)
}

func TestLoadNoData(t *testing.T) {
	ds := Load(testConfig(t.TempDir()))
	assert.True(t, ds.Empty())
	assert.False(t, ds.HasMatrix())
}

func TestLoadMergesCredits(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, cfg.MoviesPath, `[
		{"movie_id": 100, "title": "Forrest Gump", "genres": "[{'name': 'Drama'}]"}
	]`)
	writeCSV(t, cfg.CreditsCSVPath, [][]string{
		{"movie_id", "title", "cast", "crew"},
		{"100", "Forrest Gump",
			`[{"name": "Tom Hanks"}, {"name": "Robin Wright"}]`,
			`[{"name": "Robert Zemeckis", "job": "Director"}]`},
	})

	ds := Load(cfg)
	require.Equal(t, 1, ds.Len())
	m := ds.Movies[0]
	assert.Equal(t, []string{"Tom Hanks", "Robin Wright"}, m.Cast)
	assert.Equal(t, "Robert Zemeckis", m.Director())
}

func TestLoadEnrichFromCSV(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	// 主数据没有 genres/runtime，需要从补充源按标题左连接
	writeFile(t, cfg.MoviesPath, `[
		{"movie_id": 200, "title": "Heat", "overview": "主数据简介"}
	]`)
	writeCSV(t, cfg.MoviesCSVPath, [][]string{
		{"title", "genres", "runtime", "overview"},
		{"Heat", `[{"name": "Crime"}]`, "170", "补充源简介"},
	})

	ds := Load(cfg)
	require.Equal(t, 1, ds.Len())
	m := ds.Movies[0]
	assert.Equal(t, []string{"Crime"}, m.Genres)
	require.NotNil(t, m.Runtime)
	assert.Equal(t, 170.0, *m.Runtime)
	// 冲突列保留主数据的值
	assert.Equal(t, "主数据简介", m.Overview)
}

func TestLoadMatrix(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, cfg.MoviesPath, `[
		{"movie_id": 1, "title": "A"},
		{"movie_id": 2, "title": "B"}
	]`)
	writeFile(t, cfg.SimilarityPath, "1.0,0.8\n0.8,1.0\n")

	ds := Load(cfg)
	require.True(t, ds.HasMatrix())
	row, err := ds.SimilarityRow(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.8, 1.0}, row)
}

func TestLoadMatrixDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, cfg.MoviesPath, `[
		{"movie_id": 1, "title": "A"},
		{"movie_id": 2, "title": "B"}
	]`)
	// 矩阵只有一行，与规范表不配套 -> 降级为不可用
	writeFile(t, cfg.SimilarityPath, "1.0,0.8\n")

	ds := Load(cfg)
	assert.False(t, ds.HasMatrix())
}

func TestLoadMatrixRaggedRows(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, cfg.MoviesPath, `[
		{"movie_id": 1, "title": "A"},
		{"movie_id": 2, "title": "B"}
	]`)

	// 过宽的行：分数列会指向不存在的行号
	writeFile(t, cfg.SimilarityPath, "1.0,0.8,0.3\n0.8,1.0,0.5\n")
	ds := Load(cfg)
	assert.False(t, ds.HasMatrix())

	// 过窄的行：相似推荐会少返回结果
	writeFile(t, cfg.SimilarityPath, "1.0\n0.8,1.0\n")
	ds = Load(cfg)
	assert.False(t, ds.HasMatrix())
}
