package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App    AppConfig    `toml:"app"`
	LLM    LLMConfig    `toml:"llm"`
	HR     HRConfig     `toml:"hr"`
	Redis  RedisConfig  `toml:"redis"`
	Search SearchConfig `toml:"search"`
	Chat   ChatConfig   `toml:"chat"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

type LLMConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	MaxTokens      int    `toml:"max_tokens"`
}

type HRConfig struct {
	EmployeeEndpoint     string `toml:"employee_endpoint"`
	LeaveTypeEndpoint    string `toml:"leave_type_endpoint"`
	LeaveHistoryEndpoint string `toml:"leave_history_endpoint"`
	LeaveSummaryEndpoint string `toml:"leave_summary_endpoint"`
	BearerToken          string `toml:"bearer_token"`
	MaxRetries           int    `toml:"max_retries"`
}

type RedisConfig struct {
	Addr            string `toml:"addr"`
	Password        string `toml:"password"`
	DB              int    `toml:"db"`
	FetchTTLSeconds int    `toml:"fetch_ttl_seconds"`
}

type SearchConfig struct {
	CorpusPath        string  `toml:"corpus_path"`
	FallbackEnabled   bool    `toml:"fallback_enabled"`
	FallbackThreshold float64 `toml:"fallback_threshold"`
}

type ChatConfig struct {
	HistoryWindow  int   `toml:"history_window"`
	CompanyGroupID int64 `toml:"company_group_id"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "leavebot",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    8080,
			GinMode: "debug",
		},
		LLM: LLMConfig{
			BaseURL:        "https://api.openai.com/v1",
			APIKey:         "",
			Model:          "gpt-4o",
			EmbeddingModel: "text-embedding-3-large",
			MaxTokens:      512,
		},
		HR: HRConfig{
			EmployeeEndpoint:     "http://localhost/api/EmployeeMasterApi/HrmGetEmployeeDetails/",
			LeaveTypeEndpoint:    "http://localhost/api/LeaveApplicationApi/FillLeaveType",
			LeaveHistoryEndpoint: "http://localhost/api/LeaveApplicationApi/HrmGetLeaveApplicationDetails",
			LeaveSummaryEndpoint: "http://localhost/api/LeaveApplicationApi",
			BearerToken:          "",
			MaxRetries:           3,
		},
		Redis: RedisConfig{
			Addr:            "127.0.0.1:6379",
			Password:        "",
			DB:              0,
			FetchTTLSeconds: 3600,
		},
		Search: SearchConfig{
			CorpusPath:        "data/combined_doc_knowledge.json",
			FallbackEnabled:   true,
			FallbackThreshold: 0.72,
		},
		Chat: ChatConfig{
			HistoryWindow:  20,
			CompanyGroupID: 1,
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)

	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = getEnv("OPENAI_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = getEnv("OPENAI_MODEL", cfg.LLM.Model)
	cfg.LLM.EmbeddingModel = getEnv("EMBEDDING_MODEL", cfg.LLM.EmbeddingModel)
	cfg.LLM.MaxTokens = getEnvAsInt("LLM_MAX_TOKENS", cfg.LLM.MaxTokens)

	cfg.HR.EmployeeEndpoint = getEnv("EMPLOYEE_DETAILS_API", cfg.HR.EmployeeEndpoint)
	cfg.HR.LeaveTypeEndpoint = getEnv("LEAVE_TYPE_API", cfg.HR.LeaveTypeEndpoint)
	cfg.HR.LeaveHistoryEndpoint = getEnv("LEAVE_HISTORY_API", cfg.HR.LeaveHistoryEndpoint)
	cfg.HR.LeaveSummaryEndpoint = getEnv("LEAVE_SUMMARY_API", cfg.HR.LeaveSummaryEndpoint)
	cfg.HR.BearerToken = getEnv("ERP_BEARER_TOKEN", cfg.HR.BearerToken)
	cfg.HR.MaxRetries = getEnvAsInt("HR_MAX_RETRIES", cfg.HR.MaxRetries)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.FetchTTLSeconds = getEnvAsInt("REDIS_FETCH_TTL_SECONDS", cfg.Redis.FetchTTLSeconds)

	cfg.Search.CorpusPath = getEnv("DOC_EMBEDDINGS_PATH", cfg.Search.CorpusPath)
	if raw, ok := os.LookupEnv("ENABLE_DOC_SEARCH"); ok {
		cfg.Search.FallbackEnabled = raw == "true" || raw == "True" || raw == "1"
	}

	cfg.Chat.HistoryWindow = getEnvAsInt("CHAT_HISTORY_WINDOW", cfg.Chat.HistoryWindow)
	cfg.Chat.CompanyGroupID = int64(getEnvAsInt("CHAT_COMPANY_GROUP_ID", int(cfg.Chat.CompanyGroupID)))
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
