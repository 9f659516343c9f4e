package model

// MovieRecord 规范化后的电影记录（规范表中的一行）
// 数值字段用指针表示可空：源数据缺失时为 nil，序列化为 null
type MovieRecord struct {
	ID          int          `json:"id"` // 规范 ID（源数据可能叫 id 或 movie_id），0 表示缺失
	Title       string       `json:"title"`
	Overview    string       `json:"overview,omitempty"`
	Genres      []string     `json:"genres"`
	Cast        []string     `json:"cast"`
	Crew        []CrewMember `json:"crew"`
	Runtime     *float64     `json:"runtime"`
	Budget      *float64     `json:"budget"`
	Revenue     *float64     `json:"revenue"`
	Popularity  *float64     `json:"popularity"`
	VoteAverage *float64     `json:"vote_average"`
	VoteCount   *int         `json:"vote_count"`
	ReleaseDate string       `json:"release_date,omitempty"`
	ReleaseYear *int         `json:"release_year"`
}

// CrewMember 剧组成员（按 job 区分导演、编剧等）
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job,omitempty"`
}

// Director 返回第一位导演的名字，没有记录则返回空字符串
func (m *MovieRecord) Director() string {
	for _, c := range m.Crew {
		if c.Job == "Director" {
			return c.Name
		}
	}
	return ""
}

// TopCast 返回前 n 位演员（按源数据顺序）
func (m *MovieRecord) TopCast(n int) []string {
	if n <= 0 || len(m.Cast) == 0 {
		return nil
	}
	if n > len(m.Cast) {
		n = len(m.Cast)
	}
	out := make([]string, n)
	copy(out, m.Cast[:n])
	return out
}
