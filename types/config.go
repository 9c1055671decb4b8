/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package types

// AppConfig represents the complete application configuration
type AppConfig struct {
	Verbose bool          `mapstructure:"verbose"`
	Config  string        `mapstructure:"config"`
	Project ProjectConfig `mapstructure:"project" validate:"required"`
	Data    DataConfig    `mapstructure:"data" validate:"required"`
	Server  ServerConfig  `mapstructure:"server" validate:"required"`
	LLM     LLMConfig     `mapstructure:"llm" validate:"omitempty"`
	Engine  EngineConfig  `mapstructure:"engine"`
}

// ProjectConfig holds project-related settings
type ProjectConfig struct {
	RootDir string `mapstructure:"rootDir" validate:"required"`
}

// DataConfig holds flat-file storage configuration
type DataConfig struct {
	Dir    string `mapstructure:"dir" validate:"required"`
	Format string `mapstructure:"format" validate:"required,oneof=json yaml toml"`
}

// ServerConfig holds coordinator API settings
type ServerConfig struct {
	Port           int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// LLMConfig holds configuration for LLM integration
type LLMConfig struct {
	Provider  string `mapstructure:"provider" validate:"omitempty,oneof=openai ollama anthropic gemini"`
	ModelName string `mapstructure:"modelName" validate:"omitempty,min=1"`
	APIKey    string `mapstructure:"apiKey" validate:"omitempty,min=1"`
	BaseURL   string `mapstructure:"baseURL" validate:"omitempty,url"`
}

// EngineConfig holds plan execution settings
type EngineConfig struct {
	// MultiPass repeats execution passes until no step dispatches, so
	// plans may declare dependencies out of order.
	MultiPass bool `mapstructure:"multiPass"`
}
