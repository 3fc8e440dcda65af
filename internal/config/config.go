package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"docqa/internal/domain"
)

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	MaxSize    int `yaml:"max_size" toml:"max_size"`
	Overlap    int `yaml:"overlap" toml:"overlap"`
	MinKeepLen int `yaml:"min_keep_len" toml:"min_keep_len"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type        string `yaml:"type" toml:"type"`
	Model       string `yaml:"model" toml:"model"`
	BaseURL     string `yaml:"base_url" toml:"base_url"`
	BatchSize   int    `yaml:"batch_size" toml:"batch_size"`
	Concurrency int    `yaml:"concurrency" toml:"concurrency"`
	TimeoutSecs int    `yaml:"timeout_secs" toml:"timeout_secs"`
}

// GeneratorConfig selects and configures the text generation backend.
type GeneratorConfig struct {
	Type         string  `yaml:"type" toml:"type"`
	Model        string  `yaml:"model" toml:"model"`
	BaseURL      string  `yaml:"base_url" toml:"base_url"`
	HubURL       string  `yaml:"hub_url" toml:"hub_url"`
	MaxNewTokens int     `yaml:"max_new_tokens" toml:"max_new_tokens"`
	Temperature  float64 `yaml:"temperature" toml:"temperature"`
	TopP         float64 `yaml:"top_p" toml:"top_p"`
	TimeoutSecs  int     `yaml:"timeout_secs" toml:"timeout_secs"`
}

// CredentialsConfig names the environment variables holding access
// credentials. Values are never written to the config file.
type CredentialsConfig struct {
	HFTokenEnv      string `yaml:"hf_token_env" toml:"hf_token_env"`
	OpenAIAPIKeyEnv string `yaml:"openai_api_key_env" toml:"openai_api_key_env"`
}

// RetrievalConfig bounds the number of chunks a search may return.
type RetrievalConfig struct {
	DefaultTopK int `yaml:"default_top_k" toml:"default_top_k"`
	MaxTopK     int `yaml:"max_top_k" toml:"max_top_k"`
}

// SummarizerConfig configures the extractive overview shown after ingest.
type SummarizerConfig struct {
	MaxSentences int `yaml:"max_sentences" toml:"max_sentences"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr" toml:"addr"`
	GinMode string `yaml:"gin_mode" toml:"gin_mode"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
	File   string `yaml:"file" toml:"file"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Chunker     ChunkerConfig     `yaml:"chunker" toml:"chunker"`
	Embedder    EmbedderConfig    `yaml:"embedder" toml:"embedder"`
	Generator   GeneratorConfig   `yaml:"generator" toml:"generator"`
	Device      string            `yaml:"device" toml:"device"`
	Credentials CredentialsConfig `yaml:"credentials" toml:"credentials"`
	Retrieval   RetrievalConfig   `yaml:"retrieval" toml:"retrieval"`
	Summarizer  SummarizerConfig  `yaml:"summarizer" toml:"summarizer"`
	Server      ServerConfig      `yaml:"server" toml:"server"`
	Logging     LoggingConfig     `yaml:"logging" toml:"logging"`
}

const (
	DeviceCPU = "cpu"
	DeviceGPU = "gpu"
)

var (
	embedderTypes  = []string{"huggingface", "openai", "ollama", "tfidf"}
	generatorTypes = []string{"huggingface", "openai", "ollama"}

	defaultEmbedderModels = map[string]string{
		"huggingface": "sentence-transformers/all-MiniLM-L6-v2",
		"openai":      "text-embedding-3-small",
		"ollama":      "all-minilm",
	}
	defaultGeneratorModels = map[string]string{
		"huggingface": "unsloth/Llama-3.2-1B-Instruct",
		"openai":      "gpt-3.5-turbo-instruct",
		"ollama":      "llama3.2:1b",
	}
)

// Load reads a config from a specified path. If the file does not exist,
// returns defaults. Paths ending in .toml are decoded as TOML, everything
// else as YAML. Environment overrides win over the file.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	// Model names depend on the backend type the file may change.
	cfg.Embedder.Model, cfg.Generator.Model = "", ""
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else {
		if strings.EqualFold(filepath.Ext(path), ".toml") {
			if _, err := toml.Decode(string(data), cfg); err != nil {
				return nil, fmt.Errorf("decode config file failed: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}
	overrideByEnv(cfg)
	applyConfigDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docqa/config.yaml.
// If neither exists, it writes defaults to ~/.config/docqa/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	if err := Save(userPath, defaultConfig()); err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// HFToken returns the Hugging Face access token from the environment.
func (c *AppConfig) HFToken() string { return os.Getenv(c.Credentials.HFTokenEnv) }

// OpenAIAPIKey returns the OpenAI API key from the environment.
func (c *AppConfig) OpenAIAPIKey() string { return os.Getenv(c.Credentials.OpenAIAPIKeyEnv) }

// UsesBackend reports whether the embedder or the generator is of type t.
func (c *AppConfig) UsesBackend(t string) bool {
	return c.Embedder.Type == t || c.Generator.Type == t
}

// Validate checks the config and the credentials it requires. Every
// failure wraps domain.ErrInvalidConfig.
func (c *AppConfig) Validate() error {
	var problems []string
	if !contains(embedderTypes, c.Embedder.Type) {
		problems = append(problems, fmt.Sprintf("unknown embedder type %q", c.Embedder.Type))
	}
	if !contains(generatorTypes, c.Generator.Type) {
		problems = append(problems, fmt.Sprintf("unknown generator type %q", c.Generator.Type))
	}
	if c.Chunker.MaxSize <= 0 {
		problems = append(problems, "chunker.max_size must be positive")
	}
	if c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.MaxSize {
		problems = append(problems, fmt.Sprintf("chunker.overlap %d must be in [0, max_size)", c.Chunker.Overlap))
	}
	if c.Chunker.MinKeepLen < 0 {
		problems = append(problems, "chunker.min_keep_len must not be negative")
	}
	if c.Device != DeviceCPU && c.Device != DeviceGPU {
		problems = append(problems, fmt.Sprintf("device %q must be cpu or gpu", c.Device))
	}
	if c.Retrieval.MaxTopK < 1 {
		problems = append(problems, "retrieval.max_top_k must be at least 1")
	}
	if c.Retrieval.DefaultTopK < 1 || c.Retrieval.DefaultTopK > c.Retrieval.MaxTopK {
		problems = append(problems, fmt.Sprintf("retrieval.default_top_k %d must be in [1, %d]", c.Retrieval.DefaultTopK, c.Retrieval.MaxTopK))
	}
	if c.UsesBackend("huggingface") && c.HFToken() == "" {
		problems = append(problems, fmt.Sprintf("%s is not set; it is required to download gated models", c.Credentials.HFTokenEnv))
	}
	if c.UsesBackend("openai") && c.OpenAIAPIKey() == "" {
		problems = append(problems, fmt.Sprintf("%s is not set", c.Credentials.OpenAIAPIKeyEnv))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docqa", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Chunker: ChunkerConfig{MaxSize: 500, Overlap: 50, MinKeepLen: 10},
		Embedder: EmbedderConfig{
			Type:        "huggingface",
			Model:       "sentence-transformers/all-MiniLM-L6-v2",
			BatchSize:   32,
			Concurrency: 4,
			TimeoutSecs: 60,
		},
		Generator: GeneratorConfig{
			Type:         "huggingface",
			Model:        "unsloth/Llama-3.2-1B-Instruct",
			MaxNewTokens: 256,
			Temperature:  0.7,
			TopP:         0.95,
			TimeoutSecs:  120,
		},
		Device: DeviceCPU,
		Credentials: CredentialsConfig{
			HFTokenEnv:      "HUGGINGFACE_HUB_TOKEN",
			OpenAIAPIKeyEnv: "OPENAI_API_KEY",
		},
		Retrieval:  RetrievalConfig{DefaultTopK: 3, MaxTopK: 10},
		Summarizer: SummarizerConfig{MaxSentences: 5},
		Server:     ServerConfig{Addr: ":8080", GinMode: "release"},
		Logging:    LoggingConfig{Level: "info", Format: "text"},
	}
}

// applyConfigDefaults fills zero values left by a partial config file.
func applyConfigDefaults(cfg *AppConfig) {
	d := defaultConfig()
	if cfg.Chunker.MaxSize == 0 {
		cfg.Chunker.MaxSize = d.Chunker.MaxSize
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = d.Embedder.Type
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = defaultEmbedderModels[cfg.Embedder.Type]
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = d.Embedder.BatchSize
	}
	if cfg.Embedder.Concurrency == 0 {
		cfg.Embedder.Concurrency = d.Embedder.Concurrency
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = d.Embedder.TimeoutSecs
	}
	if cfg.Generator.Type == "" {
		cfg.Generator.Type = d.Generator.Type
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = defaultGeneratorModels[cfg.Generator.Type]
	}
	if cfg.Generator.MaxNewTokens == 0 {
		cfg.Generator.MaxNewTokens = d.Generator.MaxNewTokens
	}
	if cfg.Generator.Temperature == 0 {
		cfg.Generator.Temperature = d.Generator.Temperature
	}
	if cfg.Generator.TopP == 0 {
		cfg.Generator.TopP = d.Generator.TopP
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = d.Generator.TimeoutSecs
	}
	if cfg.Device == "" {
		cfg.Device = d.Device
	}
	if cfg.Credentials.HFTokenEnv == "" {
		cfg.Credentials.HFTokenEnv = d.Credentials.HFTokenEnv
	}
	if cfg.Credentials.OpenAIAPIKeyEnv == "" {
		cfg.Credentials.OpenAIAPIKeyEnv = d.Credentials.OpenAIAPIKeyEnv
	}
	if cfg.Retrieval.MaxTopK == 0 {
		cfg.Retrieval.MaxTopK = d.Retrieval.MaxTopK
	}
	if cfg.Retrieval.DefaultTopK == 0 {
		cfg.Retrieval.DefaultTopK = d.Retrieval.DefaultTopK
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = d.Summarizer.MaxSentences
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = d.Server.Addr
	}
	if cfg.Server.GinMode == "" {
		cfg.Server.GinMode = d.Server.GinMode
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = d.Logging.Format
	}
}

func overrideByEnv(cfg *AppConfig) {
	cfg.Chunker.MaxSize = getEnvAsInt("DOCQA_CHUNK_MAX_SIZE", cfg.Chunker.MaxSize)
	cfg.Chunker.Overlap = getEnvAsInt("DOCQA_CHUNK_OVERLAP", cfg.Chunker.Overlap)
	cfg.Chunker.MinKeepLen = getEnvAsInt("DOCQA_CHUNK_MIN_KEEP_LEN", cfg.Chunker.MinKeepLen)

	cfg.Embedder.Type = getEnv("DOCQA_EMBEDDER_TYPE", cfg.Embedder.Type)
	cfg.Embedder.Model = getEnv("DOCQA_EMBEDDER_MODEL", cfg.Embedder.Model)
	cfg.Embedder.BaseURL = getEnv("DOCQA_EMBEDDER_BASE_URL", cfg.Embedder.BaseURL)

	cfg.Generator.Type = getEnv("DOCQA_GENERATOR_TYPE", cfg.Generator.Type)
	cfg.Generator.Model = getEnv("DOCQA_GENERATOR_MODEL", cfg.Generator.Model)
	cfg.Generator.BaseURL = getEnv("DOCQA_GENERATOR_BASE_URL", cfg.Generator.BaseURL)
	cfg.Generator.MaxNewTokens = getEnvAsInt("DOCQA_MAX_NEW_TOKENS", cfg.Generator.MaxNewTokens)
	cfg.Generator.Temperature = getEnvAsFloat("DOCQA_TEMPERATURE", cfg.Generator.Temperature)
	cfg.Generator.TopP = getEnvAsFloat("DOCQA_TOP_P", cfg.Generator.TopP)

	cfg.Device = getEnv("DOCQA_DEVICE", cfg.Device)
	cfg.Server.Addr = getEnv("DOCQA_ADDR", cfg.Server.Addr)
	cfg.Server.GinMode = getEnv("GIN_MODE", cfg.Server.GinMode)
	cfg.Logging.Level = getEnv("DOCQA_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("DOCQA_LOG_FORMAT", cfg.Logging.Format)
	cfg.Logging.File = getEnv("DOCQA_LOG_FILE", cfg.Logging.File)
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

func getEnvAsFloat(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
