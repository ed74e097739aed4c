package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	BackendPlaywright = "playwright"
	BackendChromedp   = "chromedp"
)

const (
	defaultGeminiModel = "gemini-2.0-flash-exp"
	defaultOpenAIModel = "gpt-4o"
)

// ConfigError сигнализирует о недостающей или некорректной настройке.
// Возвращается до запуска браузера и агента.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s %s", e.Key, e.Reason)
}

type LLMConfig struct {
	Provider string
	Model    string
	APIKey   string
}

type BrowserConfig struct {
	Backend     string
	Headless    bool
	UserDataDir string
	StartURL    string
}

type AgentConfig struct {
	MaxSteps          int
	MaxActionsPerStep int
	MaxFailures       int
	StepDelay         time.Duration
}

type SearchConfig struct {
	Topic   string
	Sources []string
}

type Config struct {
	LLM     LLMConfig
	Browser BrowserConfig
	Agent   AgentConfig
	Search  SearchConfig
	Debug   bool
}

// flag name -> config key
var flagKeys = map[string]string{
	"topic":     "search.topic",
	"provider":  "llm.provider",
	"model":     "llm.model",
	"backend":   "browser.backend",
	"headless":  "browser.headless",
	"max-steps": "agent.max_steps",
	"debug":     "log.debug",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", ProviderGemini)
	v.SetDefault("llm.model", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("openai_api_key", "")

	v.SetDefault("browser.backend", BackendPlaywright)
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.user_data_dir", "")
	v.SetDefault("browser.start_url", "")

	v.SetDefault("agent.max_steps", 25)
	v.SetDefault("agent.max_actions_per_step", 4)
	v.SetDefault("agent.max_failures", 3)
	v.SetDefault("agent.step_delay", time.Second)

	v.SetDefault("search.topic", "sepsis detection")
	v.SetDefault("search.sources", "PubMed, Google Scholar, arXiv")

	v.SetDefault("log.debug", false)
}

// Load собирает конфигурацию: defaults -> yaml-файл -> .env/окружение -> флаги.
// flags может быть nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	// .env необязателен, переменные могут прийти из окружения
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, flags); err != nil {
		return nil, err
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		LLM: LLMConfig{
			Provider: strings.ToLower(strings.TrimSpace(v.GetString("llm.provider"))),
			Model:    strings.TrimSpace(v.GetString("llm.model")),
		},
		Browser: BrowserConfig{
			Backend:     strings.ToLower(strings.TrimSpace(v.GetString("browser.backend"))),
			Headless:    v.GetBool("browser.headless"),
			UserDataDir: v.GetString("browser.user_data_dir"),
			StartURL:    strings.TrimSpace(v.GetString("browser.start_url")),
		},
		Agent: AgentConfig{
			MaxSteps:          v.GetInt("agent.max_steps"),
			MaxActionsPerStep: v.GetInt("agent.max_actions_per_step"),
			MaxFailures:       v.GetInt("agent.max_failures"),
			StepDelay:         v.GetDuration("agent.step_delay"),
		},
		Search: SearchConfig{
			Topic:   strings.TrimSpace(v.GetString("search.topic")),
			Sources: stringList(v.Get("search.sources")),
		},
		Debug: v.GetBool("log.debug"),
	}

	if err := cfg.resolveCredential(v); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) resolveCredential(v *viper.Viper) error {
	var key string
	switch c.LLM.Provider {
	case ProviderGemini:
		key = "GEMINI_API_KEY"
		if c.LLM.Model == "" {
			c.LLM.Model = defaultGeminiModel
		}
	case ProviderOpenAI:
		key = "OPENAI_API_KEY"
		if c.LLM.Model == "" {
			c.LLM.Model = defaultOpenAIModel
		}
	default:
		return &ConfigError{Key: "LLM_PROVIDER", Reason: fmt.Sprintf("has unsupported value %q", c.LLM.Provider)}
	}

	c.LLM.APIKey = strings.TrimSpace(v.GetString(strings.ToLower(key)))
	if c.LLM.APIKey == "" {
		return &ConfigError{Key: key, Reason: "is not set"}
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Browser.Backend {
	case BackendPlaywright, BackendChromedp:
	default:
		return &ConfigError{Key: "BROWSER_BACKEND", Reason: fmt.Sprintf("has unsupported value %q", c.Browser.Backend)}
	}

	if c.Agent.MaxSteps <= 0 {
		return &ConfigError{Key: "AGENT_MAX_STEPS", Reason: "must be positive"}
	}
	if c.Agent.MaxActionsPerStep <= 0 {
		return &ConfigError{Key: "AGENT_MAX_ACTIONS_PER_STEP", Reason: "must be positive"}
	}
	if c.Agent.MaxFailures <= 0 {
		return &ConfigError{Key: "AGENT_MAX_FAILURES", Reason: "must be positive"}
	}
	if c.Agent.StepDelay < 0 {
		return &ConfigError{Key: "AGENT_STEP_DELAY", Reason: "must not be negative"}
	}
	if c.Search.Topic == "" {
		return &ConfigError{Key: "SEARCH_TOPIC", Reason: "is empty"}
	}
	return nil
}

func readConfigFile(v *viper.Viper, flags *pflag.FlagSet) error {
	var cfgFile string
	if flags != nil {
		if f := flags.Lookup("config"); f != nil {
			cfgFile = f.Value.String()
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("paper-search")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "paper-search"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}

// search.sources: строка через запятую (env, флаг) или yaml-список.
func stringList(raw any) []string {
	var items []string
	switch x := raw.(type) {
	case string:
		items = []string{x}
	case []string:
		items = x
	case []any:
		for _, item := range x {
			items = append(items, fmt.Sprint(item))
		}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
