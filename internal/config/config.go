package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"tenderlink/normalization/algorithms"
)

// Config конфигурация конвейера и сервера аналитики
type Config struct {
	// Каталоги данных: исходные выгрузки и промежуточные слои.
	// HTMLDir — дополнительный источник: сохраненные страницы объявлений
	// в подкаталогах по клиентам; пустое значение отключает источник.
	DataDir     string `yaml:"data_dir"`
	HTMLDir     string `yaml:"html_dir"`
	CleanedDir  string `yaml:"cleaned_dir"`
	GroupedDir  string `yaml:"grouped_dir"`
	LinkedDir   string `yaml:"linked_dir"`
	AnalysisDir string `yaml:"analysis_dir"`
	QualityDir  string `yaml:"quality_dir"`

	// Хранилище результатов для сервера аналитики
	DatabasePath string `yaml:"database_path"`

	Server     ServerConfig     `yaml:"server"`
	Clustering ClusteringConfig `yaml:"clustering"`
}

// ServerConfig параметры HTTP-сервера аналитики
type ServerConfig struct {
	Port           string  `yaml:"port"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// ClusteringConfig параметры кластеризации названий
type ClusteringConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	PrefixLength        int     `yaml:"prefix_length"`
	MaxBucketSize       int     `yaml:"max_bucket_size"`
	MergePasses         int     `yaml:"merge_passes"`
	CacheSize           int     `yaml:"cache_size"`
}

// Default конфигурация по умолчанию
func Default() *Config {
	return &Config{
		DataDir:      "data",
		CleanedDir:   "data_cleaned",
		GroupedDir:   "data_grouped",
		LinkedDir:    "data_linked",
		AnalysisDir:  "data_analysis",
		QualityDir:   "data_quality",
		DatabasePath: "tenderlink.db",
		Server: ServerConfig{
			Port:           "8080",
			RateLimitRPS:   50,
			RateLimitBurst: 100,
		},
		Clustering: ClusteringConfig{
			SimilarityThreshold: 0.88,
			PrefixLength:        8,
			MaxBucketSize:       80,
			MergePasses:         2,
			CacheSize:           algorithms.DefaultCacheSize,
		},
	}
}

// Load загружает конфигурацию: значения по умолчанию, поверх них YAML-файл
// (если путь не пустой), поверх — переменные окружения TENDERLINK_*
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("не удалось разобрать файл конфигурации %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv переопределения из переменных окружения
func applyEnv(cfg *Config) {
	if v := os.Getenv("TENDERLINK_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("TENDERLINK_HTML_DIR"); v != "" {
		cfg.HTMLDir = v
	}
	if v := os.Getenv("TENDERLINK_DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("TENDERLINK_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("TENDERLINK_SIMILARITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Clustering.SimilarityThreshold = f
		}
	}
	if v := os.Getenv("TENDERLINK_MAX_BUCKET_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Clustering.MaxBucketSize = n
		}
	}
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir не может быть пустым")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path не может быть пустым")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port не может быть пустым")
	}
	if c.Clustering.SimilarityThreshold <= 0 || c.Clustering.SimilarityThreshold > 1 {
		return fmt.Errorf("clustering.similarity_threshold должен быть в (0, 1], получено %v", c.Clustering.SimilarityThreshold)
	}
	if c.Clustering.PrefixLength < 1 {
		return fmt.Errorf("clustering.prefix_length должен быть >= 1")
	}
	if c.Clustering.MaxBucketSize < 1 {
		return fmt.Errorf("clustering.max_bucket_size должен быть >= 1")
	}
	if c.Clustering.MergePasses < 0 {
		return fmt.Errorf("clustering.merge_passes не может быть отрицательным")
	}
	return nil
}

// ClusterOptions параметры кластеризации в виде опций алгоритма
func (c *Config) ClusterOptions() algorithms.ClusterOptions {
	return algorithms.ClusterOptions{
		SimilarityThreshold: c.Clustering.SimilarityThreshold,
		PrefixLength:        c.Clustering.PrefixLength,
		MaxBucketSize:       c.Clustering.MaxBucketSize,
		MergePasses:         c.Clustering.MergePasses,
		CacheSize:           c.Clustering.CacheSize,
	}
}

// IntermediateDirs каталоги промежуточных слоев, которые можно очищать
// перед полным пересчетом. Каталог исходных данных сюда не входит.
func (c *Config) IntermediateDirs() []string {
	return []string{c.CleanedDir, c.GroupedDir, c.LinkedDir, c.AnalysisDir, c.QualityDir}
}
