package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Env      string
	Port     string
	SiteName string

	// 数据集路径（全部只读，启动时加载一次）
	DataDir          string
	MoviesPath       string // 行式主数据 movies.json
	MovieColumnsPath string // 列式后备数据 movie_columns.json
	MoviesCSVPath    string // tmdb_5000_movies.csv 补充源
	CreditsCSVPath   string // tmdb_5000_credits.csv 演职员表
	SimilarityPath   string // similarity.csv 预计算相似度矩阵

	// TMDB 海报服务
	TMDBAPIKey    string
	TMDBBaseURL   string
	PosterBaseURL string
	PosterTimeout time.Duration
	PosterRetries int
}

// Load 加载配置
func Load() *Config {
	dataDir := getEnv("DATA_DIR", "./data")

	timeoutSec, _ := strconv.Atoi(getEnv("POSTER_TIMEOUT_SECONDS", "5"))
	if timeoutSec <= 0 {
		timeoutSec = 5
	}
	retries, _ := strconv.Atoi(getEnv("POSTER_RETRIES", "3"))
	if retries <= 0 {
		retries = 3
	}

	return &Config{
		Env:      getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "5006"),
		SiteName: getEnv("SITE_NAME", "ReelRec"),

		DataDir:          dataDir,
		MoviesPath:       getEnv("MOVIES_PATH", filepath.Join(dataDir, "movies.json")),
		MovieColumnsPath: getEnv("MOVIE_COLUMNS_PATH", filepath.Join(dataDir, "movie_columns.json")),
		MoviesCSVPath:    getEnv("MOVIES_CSV_PATH", filepath.Join(dataDir, "tmdb_5000_movies.csv")),
		CreditsCSVPath:   getEnv("CREDITS_CSV_PATH", filepath.Join(dataDir, "tmdb_5000_credits.csv")),
		SimilarityPath:   getEnv("SIMILARITY_PATH", filepath.Join(dataDir, "similarity.csv")),

		TMDBAPIKey:    getEnv("TMDB_API_KEY", ""),
		TMDBBaseURL:   getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		PosterBaseURL: getEnv("POSTER_BASE_URL", "https://image.tmdb.org/t/p"),
		PosterTimeout: time.Duration(timeoutSec) * time.Second,
		PosterRetries: retries,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
