package dataset

import (
	"encoding/csv"
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/user/reelrec/internal/config"
	"github.com/user/reelrec/internal/model"
)

// Load 加载并规范化全部数据源，构建规范表和相似度矩阵
// 容错策略：可选源缺失时降级为空列，不中断启动；主数据源全部缺失时返回空表，
// 由调用方根据 Empty() 提示"无数据"
func Load(cfg *config.Config) *Dataset {
	rows := loadPrimary(cfg)
	if len(rows) == 0 {
		log.Println("[Dataset] 主数据源缺失或为空，进入无数据模式")
		return New(nil, nil)
	}

	// 补充源：主数据缺少描述性列时，按标题左连接 movies CSV（主数据优先）
	if !hasColumn(rows, "genres") || !hasColumn(rows, "runtime") {
		enrichFromCSV(rows, cfg.MoviesCSVPath)
	}

	// 演职员表：主数据没有 cast/crew 时，按 ID 或标题并入 credits
	if !hasColumn(rows, "cast") || !hasColumn(rows, "crew") {
		mergeCredits(rows, cfg.CreditsCSVPath)
	}

	movies := make([]model.MovieRecord, 0, len(rows))
	for _, row := range rows {
		movies = append(movies, buildRecord(row))
	}

	matrix := loadMatrix(cfg.SimilarityPath, len(movies))
	if matrix == nil {
		log.Println("[Dataset] 相似度矩阵不可用，相似推荐功能降级")
	}

	log.Printf("[Dataset] 加载完成：%d 部电影，矩阵可用=%v", len(movies), matrix != nil)
	return New(movies, matrix)
}

// loadPrimary 加载主数据：优先行式 movies.json，其次列式 movie_columns.json
func loadPrimary(cfg *config.Config) []map[string]interface{} {
	if rows := loadRowJSON(cfg.MoviesPath); len(rows) > 0 {
		return rows
	}
	return loadColumnJSON(cfg.MovieColumnsPath)
}

// loadRowJSON 行式 JSON：对象数组，每个对象是一行
func loadRowJSON(path string) []map[string]interface{} {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		log.Printf("[Dataset] 解析 %s 失败: %v", path, err)
		return nil
	}
	return rows
}

// loadColumnJSON 列式 JSON：列名 -> 值数组，转置成行
func loadColumnJSON(path string) []map[string]interface{} {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var columns map[string][]interface{}
	if err := json.Unmarshal(data, &columns); err != nil {
		log.Printf("[Dataset] 解析 %s 失败: %v", path, err)
		return nil
	}

	length := 0
	for _, values := range columns {
		if len(values) > length {
			length = len(values)
		}
	}
	if length == 0 {
		return nil
	}

	rows := make([]map[string]interface{}, length)
	for i := range rows {
		rows[i] = make(map[string]interface{}, len(columns))
	}
	for name, values := range columns {
		for i, v := range values {
			rows[i][name] = v
		}
	}
	return rows
}

// hasColumn 判断任意一行是否带有该列
func hasColumn(rows []map[string]interface{}, name string) bool {
	for _, row := range rows {
		if _, ok := row[name]; ok {
			return true
		}
	}
	return false
}

// enrichFromCSV 按标题左连接补充源，只填主数据缺失的列（主数据优先）
func enrichFromCSV(rows []map[string]interface{}, path string) {
	csvRows, header := readCSV(path)
	if csvRows == nil {
		return
	}

	// 标题索引，同名取首行
	byTitle := make(map[string][]string, len(csvRows))
	titleIdx, ok := header["title"]
	if !ok {
		if titleIdx, ok = header["original_title"]; !ok {
			return
		}
	}
	for _, r := range csvRows {
		key := strings.ToLower(r[titleIdx])
		if _, exists := byTitle[key]; !exists && key != "" {
			byTitle[key] = r
		}
	}

	filled := 0
	for _, row := range rows {
		title := strings.ToLower(asString(row["title"]))
		csvRow, ok := byTitle[title]
		if !ok {
			continue
		}
		for name, idx := range header {
			if v, exists := row[name]; exists && v != nil && asString(v) != "" {
				continue // 冲突时保留主数据的值
			}
			if csvRow[idx] != "" {
				row[name] = csvRow[idx]
				filled++
			}
		}
	}
	if filled > 0 {
		log.Printf("[Dataset] 补充源填充了 %d 个缺失字段", filled)
	}
}

// mergeCredits 并入演职员表：优先按 ID 匹配，其次按标题
// credits 的 ID 列可能叫 movie_id 或 id，先统一再连接
func mergeCredits(rows []map[string]interface{}, path string) {
	csvRows, header := readCSV(path)
	if csvRows == nil {
		return
	}

	idIdx, ok := header["movie_id"]
	if !ok {
		if idIdx, ok = header["id"]; !ok {
			idIdx = -1
		}
	}
	titleIdx, hasTitle := header["title"]
	castIdx, hasCast := header["cast"]
	crewIdx, hasCrew := header["crew"]
	if !hasCast && !hasCrew {
		return
	}

	byID := make(map[int][]string, len(csvRows))
	byTitle := make(map[string][]string, len(csvRows))
	for _, r := range csvRows {
		if idIdx >= 0 {
			if id, err := strconv.Atoi(strings.TrimSpace(r[idIdx])); err == nil {
				if _, exists := byID[id]; !exists {
					byID[id] = r
				}
			}
		}
		if hasTitle {
			key := strings.ToLower(r[titleIdx])
			if _, exists := byTitle[key]; !exists && key != "" {
				byTitle[key] = r
			}
		}
	}

	for _, row := range rows {
		var credit []string
		if id := recordID(row); id > 0 {
			credit = byID[id]
		}
		if credit == nil && hasTitle {
			credit = byTitle[strings.ToLower(asString(row["title"]))]
		}
		if credit == nil {
			continue
		}
		if hasCast {
			if v, exists := row["cast"]; !exists || v == nil || asString(v) == "" {
				row["cast"] = credit[castIdx]
			}
		}
		if hasCrew {
			if v, exists := row["crew"]; !exists || v == nil || asString(v) == "" {
				row["crew"] = credit[crewIdx]
			}
		}
	}
}

// buildRecord 把一行原始数据规范化为 MovieRecord
// 嵌套列在这里解析一次并缓存到结构化字段，后续查询不再重复解析
func buildRecord(row map[string]interface{}) model.MovieRecord {
	releaseDate := asString(row["release_date"])
	return model.MovieRecord{
		ID:          recordID(row),
		Title:       asString(row["title"]),
		Overview:    asString(row["overview"]),
		Genres:      ParseNameList(row["genres"]),
		Cast:        ParseNameList(row["cast"]),
		Crew:        ParseCrewList(row["crew"]),
		Runtime:     asFloatPtr(row["runtime"]),
		Budget:      asFloatPtr(row["budget"]),
		Revenue:     asFloatPtr(row["revenue"]),
		Popularity:  asFloatPtr(row["popularity"]),
		VoteAverage: asFloatPtr(row["vote_average"]),
		VoteCount:   asIntPtr(row["vote_count"]),
		ReleaseDate: releaseDate,
		ReleaseYear: parseYear(releaseDate),
	}
}

// recordID 统一 ID 列名：优先 movie_id，其次 id，缺失返回 0
func recordID(row map[string]interface{}) int {
	for _, key := range []string{"movie_id", "id"} {
		if p := asIntPtr(row[key]); p != nil {
			return *p
		}
	}
	return 0
}

// parseYear 取上映日期的年份前缀（如 "2009-12-10" -> 2009），解析失败返回 nil
func parseYear(date string) *int {
	if len(date) < 4 {
		return nil
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return nil
	}
	return &year
}

// loadMatrix 加载相似度矩阵 CSV；文件缺失或维度与规范表不符时返回 nil（降级）
func loadMatrix(path string, rowCount int) [][]float64 {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var matrix [][]float64
	for {
		record, err := r.Read()
		if err != nil {
			break
		}
		// 矩阵必须是方阵，行宽不符说明数据损坏，宽行还会导致行号越界
		if len(record) != rowCount {
			log.Printf("[Dataset] 矩阵第 %d 行宽度 %d 与规范表 %d 不一致，矩阵不可用", len(matrix), len(record), rowCount)
			return nil
		}
		row := make([]float64, len(record))
		for i, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				log.Printf("[Dataset] 矩阵第 %d 行存在非法数值，矩阵不可用", len(matrix))
				return nil
			}
			row[i] = v
		}
		matrix = append(matrix, row)
	}

	// 矩阵按规范表行序计算，行数对不上说明数据不配套
	if len(matrix) != rowCount {
		log.Printf("[Dataset] 矩阵行数 %d 与规范表 %d 不一致，矩阵不可用", len(matrix), rowCount)
		return nil
	}
	return matrix
}

// readCSV 读取 CSV，返回数据行和表头索引；失败返回 nil
func readCSV(path string) ([][]string, map[string]int) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		log.Printf("[Dataset] 读取 %s 失败: %v", path, err)
		return nil, nil
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}

	// 列数不足的行直接丢弃，避免越界
	rows := make([][]string, 0, len(records)-1)
	for _, r := range records[1:] {
		if len(r) >= len(records[0]) {
			rows = append(rows, r)
		}
	}
	return rows, header
}

// asString 宽松取字符串：nil 返回空串，数字转十进制文本
func asString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	default:
		return ""
	}
}

// asFloatPtr 宽松取数值：缺失或不可解析返回 nil
func asFloatPtr(v interface{}) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// asIntPtr 宽松取整数：缺失或不可解析返回 nil
func asIntPtr(v interface{}) *int {
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i
	case int:
		return &n
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil
		}
		if i, err := strconv.Atoi(s); err == nil {
			return &i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			i := int(f)
			return &i
		}
		return nil
	default:
		return nil
	}
}
