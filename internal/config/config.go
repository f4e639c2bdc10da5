package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// Provider names accepted by AI_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"
)

// Generation defaults. They bound reply length and discourage the model from
// repeating transcript content.
const (
	DefaultModel            = "gpt-4"
	DefaultTemperature      = float32(0.8)
	DefaultMaxTokens        = 150
	DefaultPresencePenalty  = float32(0.6)
	DefaultFrequencyPenalty = float32(0.5)
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Chat   ChatConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Chat: loadChatConfig()}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// ChatConfig 描述会话行为配置。
type ChatConfig struct {
	Ordering    string
	PersonaFile string
}

func loadChatConfig() ChatConfig {
	return ChatConfig{
		Ordering:    strings.TrimSpace(os.Getenv("CHAT_ORDERING")),
		PersonaFile: strings.TrimSpace(os.Getenv("PERSONA_FILE")),
	}
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider         string
	APIKey           string
	AccessKey        string
	SecretKey        string
	Model            string
	BaseURL          string
	Region           string
	Temperature      float32
	MaxTokens        int
	PresencePenalty  float32
	FrequencyPenalty float32
	// Timeout is handed to the provider transport; zero keeps its default.
	Timeout time.Duration
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	if c.Model == "" {
		return false
	}
	if c.Provider == ProviderArk {
		return c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != "")
	}
	return c.APIKey != ""
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.BaseChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%s 凭证或模型配置缺失", c.Provider)
	}

	switch c.Provider {
	case ProviderArk:
		return ark.NewChatModel(ctx, c.ArkConfig())
	case ProviderOpenAI:
		return openai.NewChatModel(ctx, c.OpenAIConfig())
	default:
		return nil, fmt.Errorf("unsupported AI_PROVIDER %q", c.Provider)
	}
}

// OpenAIConfig maps the generation parameters onto the OpenAI chat model.
func (c AIConfig) OpenAIConfig() *openai.ChatModelConfig {
	temperature := c.Temperature
	maxTokens := c.MaxTokens
	presence := c.PresencePenalty
	frequency := c.FrequencyPenalty

	return &openai.ChatModelConfig{
		APIKey:           c.APIKey,
		BaseURL:          c.BaseURL,
		Model:            c.Model,
		Timeout:          c.Timeout,
		Temperature:      &temperature,
		MaxTokens:        &maxTokens,
		PresencePenalty:  &presence,
		FrequencyPenalty: &frequency,
	}
}

// ArkConfig maps the generation parameters onto the Ark chat model. The SDK
// retries by default; retries are switched off so a failure surfaces once.
func (c AIConfig) ArkConfig() *ark.ChatModelConfig {
	temperature := c.Temperature
	maxTokens := c.MaxTokens
	presence := c.PresencePenalty
	frequency := c.FrequencyPenalty
	retries := 0

	cfg := &ark.ChatModelConfig{
		BaseURL:          c.BaseURL,
		Region:           c.Region,
		APIKey:           c.APIKey,
		AccessKey:        c.AccessKey,
		SecretKey:        c.SecretKey,
		Model:            c.Model,
		MaxTokens:        &maxTokens,
		Temperature:      &temperature,
		PresencePenalty:  &presence,
		FrequencyPenalty: &frequency,
		RetryTimes:       &retries,
	}
	if c.Timeout > 0 {
		timeout := c.Timeout
		cfg.Timeout = &timeout
	}
	return cfg
}

func loadAIConfig() (AIConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderOpenAI))
	if provider != ProviderOpenAI && provider != ProviderArk {
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value %q", provider)
	}

	temperature, err := parseFloat32Env("AI_TEMPERATURE", DefaultTemperature)
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseIntEnv("AI_MAX_TOKENS", DefaultMaxTokens)
	if err != nil {
		return AIConfig{}, err
	}

	presence, err := parseFloat32Env("AI_PRESENCE_PENALTY", DefaultPresencePenalty)
	if err != nil {
		return AIConfig{}, err
	}

	frequency, err := parseFloat32Env("AI_FREQUENCY_PENALTY", DefaultFrequencyPenalty)
	if err != nil {
		return AIConfig{}, err
	}

	timeout, err := parseDurationEnv("AI_TIMEOUT")
	if err != nil {
		return AIConfig{}, err
	}

	cfg := AIConfig{
		Provider:         provider,
		Temperature:      temperature,
		MaxTokens:        maxTokens,
		PresencePenalty:  presence,
		FrequencyPenalty: frequency,
		Timeout:          timeout,
	}

	switch provider {
	case ProviderArk:
		if cfg.APIKey, err = readSecret("ARK_API_KEY"); err != nil {
			return AIConfig{}, err
		}
		if cfg.AccessKey, err = readSecret("ARK_ACCESS_KEY"); err != nil {
			return AIConfig{}, err
		}
		if cfg.SecretKey, err = readSecret("ARK_SECRET_KEY"); err != nil {
			return AIConfig{}, err
		}
		cfg.Model = strings.TrimSpace(os.Getenv("AI_MODEL"))
		cfg.BaseURL = getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3")
		cfg.Region = getEnvOrDefault("ARK_REGION", "cn-beijing")
	default:
		if cfg.APIKey, err = readSecret("OPENAI_API_KEY"); err != nil {
			return AIConfig{}, err
		}
		cfg.Model = getEnvOrDefault("AI_MODEL", DefaultModel)
		cfg.BaseURL = strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	}

	return cfg, nil
}

// readSecret returns the value of key, or the contents of the file named by
// key_FILE when that is set (mounted secret stores).
func readSecret(key string) (string, error) {
	if path := strings.TrimSpace(os.Getenv(key + "_FILE")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s_FILE: %w", key, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return strings.TrimSpace(os.Getenv(key)), nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return val, nil
}

func parseFloat32Env(key string, defaultValue float32) (float32, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return float32(val), nil
}

func parseDurationEnv(key string) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}
