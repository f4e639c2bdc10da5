package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearAIEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"AI_PROVIDER", "AI_MODEL", "AI_TEMPERATURE", "AI_MAX_TOKENS", "AI_PRESENCE_PENALTY",
		"AI_FREQUENCY_PENALTY", "AI_TIMEOUT", "OPENAI_API_KEY", "OPENAI_API_KEY_FILE",
		"OPENAI_BASE_URL", "ARK_API_KEY", "ARK_API_KEY_FILE", "ARK_ACCESS_KEY", "ARK_SECRET_KEY",
		"ARK_BASE_URL", "ARK_REGION",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadAIConfigDefaults(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := loadAIConfig()
	if err != nil {
		t.Fatalf("loadAIConfig err: %v", err)
	}

	if cfg.Provider != ProviderOpenAI || cfg.Model != "gpt-4" {
		t.Fatalf("unexpected provider/model: %s/%s", cfg.Provider, cfg.Model)
	}
	if cfg.Temperature != 0.8 || cfg.MaxTokens != 150 {
		t.Fatalf("unexpected temperature/max tokens: %v/%d", cfg.Temperature, cfg.MaxTokens)
	}
	if cfg.PresencePenalty != 0.6 || cfg.FrequencyPenalty != 0.5 {
		t.Fatalf("unexpected penalties: %v/%v", cfg.PresencePenalty, cfg.FrequencyPenalty)
	}
	if cfg.Timeout != 0 {
		t.Fatalf("expected no timeout override, got %v", cfg.Timeout)
	}
	if !cfg.Enabled() {
		t.Fatal("expected config to be enabled")
	}
}

func TestLoadAIConfigReadsSecretFile(t *testing.T) {
	clearAIEnv(t)
	path := filepath.Join(t.TempDir(), "openai-key")
	if err := os.WriteFile(path, []byte("sk-from-file\n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_API_KEY_FILE", path)

	cfg, err := loadAIConfig()
	if err != nil {
		t.Fatalf("loadAIConfig err: %v", err)
	}
	if cfg.APIKey != "sk-from-file" {
		t.Fatalf("expected key from file, got %q", cfg.APIKey)
	}
}

func TestLoadAIConfigMissingSecretFile(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("OPENAI_API_KEY_FILE", filepath.Join(t.TempDir(), "missing"))

	if _, err := loadAIConfig(); err == nil {
		t.Fatal("expected error for unreadable secret file")
	}
}

func TestLoadAIConfigOverrides(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("AI_PROVIDER", "ark")
	t.Setenv("ARK_API_KEY", "ark-key")
	t.Setenv("AI_MODEL", "doubao-pro")
	t.Setenv("AI_TEMPERATURE", "0.2")
	t.Setenv("AI_MAX_TOKENS", "64")
	t.Setenv("AI_TIMEOUT", "30s")

	cfg, err := loadAIConfig()
	if err != nil {
		t.Fatalf("loadAIConfig err: %v", err)
	}
	if cfg.Provider != ProviderArk || cfg.Model != "doubao-pro" || cfg.Region != "cn-beijing" {
		t.Fatalf("unexpected ark config: %+v", cfg)
	}
	if cfg.Temperature != float32(0.2) || cfg.MaxTokens != 64 || cfg.Timeout != 30*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}

	arkCfg := cfg.ArkConfig()
	if arkCfg.RetryTimes == nil || *arkCfg.RetryTimes != 0 {
		t.Fatal("expected retries disabled")
	}
	if arkCfg.Timeout == nil || *arkCfg.Timeout != 30*time.Second {
		t.Fatal("expected timeout passed through")
	}
}

func TestLoadAIConfigArkRequiresModel(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("AI_PROVIDER", "ark")
	t.Setenv("ARK_API_KEY", "ark-key")

	cfg, err := loadAIConfig()
	if err != nil {
		t.Fatalf("loadAIConfig err: %v", err)
	}
	if cfg.Enabled() {
		t.Fatal("ark without model must be disabled")
	}
}

func TestLoadAIConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"AI_PROVIDER":    "bard",
		"AI_TEMPERATURE": "warm",
		"AI_MAX_TOKENS":  "-1",
		"AI_TIMEOUT":     "soon",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearAIEnv(t)
			t.Setenv(key, value)
			if _, err := loadAIConfig(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestOpenAIConfigCarriesGenerationParameters(t *testing.T) {
	cfg := AIConfig{
		Provider:         ProviderOpenAI,
		APIKey:           "sk-test",
		Model:            DefaultModel,
		Temperature:      DefaultTemperature,
		MaxTokens:        DefaultMaxTokens,
		PresencePenalty:  DefaultPresencePenalty,
		FrequencyPenalty: DefaultFrequencyPenalty,
	}

	got := cfg.OpenAIConfig()
	if got.Model != "gpt-4" || got.APIKey != "sk-test" {
		t.Fatalf("unexpected model/key: %s/%s", got.Model, got.APIKey)
	}
	if *got.Temperature != 0.8 || *got.MaxTokens != 150 {
		t.Fatalf("unexpected temperature/max tokens: %v/%d", *got.Temperature, *got.MaxTokens)
	}
	if *got.PresencePenalty != 0.6 || *got.FrequencyPenalty != 0.5 {
		t.Fatalf("unexpected penalties: %v/%v", *got.PresencePenalty, *got.FrequencyPenalty)
	}
}

func TestLoadServerConfig(t *testing.T) {
	t.Setenv("PORT", "9090")
	cfg, err := loadServerConfig()
	if err != nil || cfg.Addr != ":9090" {
		t.Fatalf("unexpected server config %+v err=%v", cfg, err)
	}

	t.Setenv("PORT", "127.0.0.1:7000")
	cfg, err = loadServerConfig()
	if err != nil || cfg.Addr != "127.0.0.1:7000" {
		t.Fatalf("unexpected server config %+v err=%v", cfg, err)
	}

	t.Setenv("PORT", "80 80")
	if _, err := loadServerConfig(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}
