package config

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderGroq       ProviderType = "groq"
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderGoogle     ProviderType = "google"
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOllama     ProviderType = "ollama"
)

// StateBackend selects where live conversation state is kept.
type StateBackend string

const (
	StateMemory StateBackend = "memory"
	StateSQLite StateBackend = "sqlite"
)

// Config is the top-level leadagent configuration, corresponding to .leadagent.yml.
type Config struct {
	Provider       ProviderType `yaml:"provider" koanf:"provider"`
	Model          string       `yaml:"model" koanf:"model"`
	Port           int          `yaml:"port" koanf:"port"`
	DataDir        string       `yaml:"data_dir" koanf:"data_dir"`
	StateBackend   StateBackend `yaml:"state_backend" koanf:"state_backend"`
	WhatsAppNumber string       `yaml:"whatsapp_number" koanf:"whatsapp_number"`
	AgentName      string       `yaml:"agent_name" koanf:"agent_name"`
	CompanyName    string       `yaml:"company_name" koanf:"company_name"`
	RateLimitRPM   int          `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
	Notify         NotifyConfig `yaml:"notify" koanf:"notify"`
	CORSAllowAll   bool         `yaml:"cors_allow_all" koanf:"cors_allow_all"`
	LogLevel       string       `yaml:"log_level" koanf:"log_level"`
}

// NotifyConfig holds the hot-lead webhook settings.
type NotifyConfig struct {
	WebhookURL  string `yaml:"webhook_url" koanf:"webhook_url"`
	MinPriority string `yaml:"min_priority" koanf:"min_priority"`
}
