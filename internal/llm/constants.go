package llm

// Supported providers.
const (
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// Default models and endpoints per provider.
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultOllamaModel    = "llama3.2"
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
	DefaultGeminiModel    = "gemini-2.0-flash"

	DefaultOllamaURL = "http://localhost:11434"
)

// Temperatures used by the planning flow. Planning runs cold so the output
// stays anchored to the goal; the retry runs colder still.
const (
	PlanningTemperature      float32 = 0.2
	PlanningRetryTemperature float32 = 0.1
	StepTemperature          float32 = 0.2
)
