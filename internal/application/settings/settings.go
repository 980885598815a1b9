// Package settings defines application-level configuration data.
package settings

import "time"

// ServerConfig controls the chat HTTP server.
type ServerConfig struct {
	Addr           string        `yaml:"addr" kong:"help='Listen address',default=':8080'"`
	RequestTimeout time.Duration `yaml:"request_timeout" kong:"help='Maximum duration of a chat request',default='30s'"`
	MaxSteps       int           `yaml:"max_steps" kong:"help='Maximum model steps per chat turn',default='5'"`
	RateLimit      float64       `yaml:"rate_limit" kong:"help='Chat requests per second (0 disables limiting)',default='0'"`
	RateBurst      int           `yaml:"rate_burst" kong:"help='Chat request burst size',default='5'"`
	SystemPrompt   string        `yaml:"system_prompt" kong:"help='System prompt sent with every chat turn'"`
}

// CodexConfig defines Codex CLI integration settings.
type CodexConfig struct {
	Command         string `yaml:"command" kong:"help='Codex command',default='codex'"`
	ReasoningEffort string `yaml:"reasoning_effort" kong:"help='Reasoning effort (none/minimal/low/medium/high/xhigh)',default='low'"`
}

// LLMConfig selects the hosted model providers.
type LLMConfig struct {
	Provider        string        `yaml:"provider" kong:"help='Chat model provider',enum='openai,anthropic',default='openai'"`
	Model           string        `yaml:"model" kong:"help='Chat model (empty uses the provider default)'"`
	ObjectProvider  string        `yaml:"object_provider" kong:"help='Structured-output provider (openai/anthropic/codex, empty uses provider)'"`
	ObjectModel     string        `yaml:"object_model" kong:"help='Structured-output model (empty uses model, or the provider default)'"`
	BaseURL         string        `yaml:"base_url" kong:"help='Provider API base URL override'"`
	MaxTokens       int           `yaml:"max_tokens" kong:"help='Maximum output tokens per model call',default='1024'"`
	Timeout         time.Duration `yaml:"timeout" kong:"help='Timeout of a single model call',default='60s'"`
	OpenAIAPIKey    string        `yaml:"-" kong:"name='openai-api-key',help='OpenAI API key',env='OPENAI_API_KEY'"`
	AnthropicAPIKey string        `yaml:"-" kong:"name='anthropic-api-key',help='Anthropic API key',env='ANTHROPIC_API_KEY'"`
	Codex           CodexConfig   `yaml:"codex" kong:"embed,prefix='codex.'"`
}

// FeedConfig controls feed fetching.
type FeedConfig struct {
	UserAgent string        `yaml:"user_agent" kong:"help='User-Agent sent with feed requests',default='SubstackChat/1.0'"`
	Timeout   time.Duration `yaml:"timeout" kong:"help='Feed request timeout',default='10s'"`
	Suffix    string        `yaml:"suffix" kong:"help='Path appended to a newsletter URL to reach its feed',default='feed'"`
}

// ScrapeConfig controls post page fetching and content location.
type ScrapeConfig struct {
	Locator   string        `yaml:"locator" kong:"help='Content locator',enum='selector,readability',default='selector'"`
	Selector  string        `yaml:"selector" kong:"help='CSS selector of the post body',default='.available-content'"`
	UserAgent string        `yaml:"user_agent" kong:"help='User-Agent sent with page requests',default='SubstackChat/1.0'"`
	Timeout   time.Duration `yaml:"timeout" kong:"help='Page request timeout',default='10s'"`
}

// ResourcesConfig controls resource extraction.
type ResourcesConfig struct {
	Truncation string `yaml:"truncation" kong:"help='What to do with extra resources',enum='none,truncate',default='none'"`
}

// KeyMapConfig defines the configuration for keybindings.
type KeyMapConfig struct {
	Submit      string `yaml:"submit" kong:"help='Send message key',default='enter'"`
	NextExample string `yaml:"next_example" kong:"help='Fill the next example prompt key',default='tab'"`
	UpPage      string `yaml:"up_page" kong:"help='Scroll up key',default='pgup'"`
	DownPage    string `yaml:"down_page" kong:"help='Scroll down key',default='pgdown'"`
	Quit        string `yaml:"quit" kong:"help='Quit key',default='esc'"`
}

// ThemeConfig defines the color theme configuration.
type ThemeConfig struct {
	Accent string `yaml:"accent" kong:"help='Accent color',default='63'"`
	Muted  string `yaml:"muted" kong:"help='Muted text color',default='244'"`
}

// UIConfig controls the terminal chat client.
type UIConfig struct {
	ServerURL string       `yaml:"server_url" kong:"help='Chat server URL',default='http://localhost:8080'"`
	KeyMap    KeyMapConfig `yaml:"keymap" kong:"embed,prefix='keymap.'"`
	Theme     ThemeConfig  `yaml:"theme" kong:"embed,prefix='theme.'"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `yaml:"level" kong:"help='Log level',enum='debug,info,warn,error',default='info'"`
	File  string `yaml:"file" kong:"help='Log file (stderr when empty)'"`
}

// Settings represents the application configuration.
type Settings struct {
	Server    ServerConfig    `yaml:"server" kong:"embed,prefix='server.'"`
	LLM       LLMConfig       `yaml:"llm" kong:"embed,prefix='llm.'"`
	Feed      FeedConfig      `yaml:"feed" kong:"embed,prefix='feed.'"`
	Scrape    ScrapeConfig    `yaml:"scrape" kong:"embed,prefix='scrape.'"`
	Resources ResourcesConfig `yaml:"resources" kong:"embed,prefix='resources.'"`
	UI        UIConfig        `yaml:"ui" kong:"embed,prefix='ui.'"`
	Log       LogConfig       `yaml:"log" kong:"embed,prefix='log.'"`
}

// ObjectProviderOrDefault returns the provider used for structured output.
func (s LLMConfig) ObjectProviderOrDefault() string {
	if s.ObjectProvider != "" {
		return s.ObjectProvider
	}
	return s.Provider
}
