package translation

import "strings"

// Protocol identifies the wire API a provider speaks.
type Protocol int

const (
	// ProtocolOpenAI is the OpenAI chat completions API, used by most providers.
	ProtocolOpenAI Protocol = iota
	// ProtocolAnthropic is Anthropic's messages API.
	ProtocolAnthropic
	// ProtocolGemini is Google's generateContent API.
	ProtocolGemini
)

func (p Protocol) String() string {
	switch p {
	case ProtocolAnthropic:
		return "anthropic"
	case ProtocolGemini:
		return "gemini"
	default:
		return "openai"
	}
}

// ProviderID names a supported translation provider.
type ProviderID string

const (
	ProviderOpenAI      ProviderID = "openai"
	ProviderAnthropic   ProviderID = "anthropic"
	ProviderDeepSeek    ProviderID = "deepseek"
	ProviderMoonshot    ProviderID = "moonshot"
	ProviderZhipuAI     ProviderID = "zhipuai"
	ProviderQwen        ProviderID = "qwen"
	ProviderGroq        ProviderID = "groq"
	ProviderGemini      ProviderID = "gemini"
	ProviderMistral     ProviderID = "mistral"
	ProviderCohere      ProviderID = "cohere"
	ProviderOllama      ProviderID = "ollama"
	ProviderOpenRouter  ProviderID = "openrouter"
	ProviderTogetherAI  ProviderID = "togetherai"
	ProviderPerplexity  ProviderID = "perplexity"
	ProviderSiliconFlow ProviderID = "siliconflow"

	// DefaultProvider is used when the configured provider is unknown.
	DefaultProvider = ProviderDeepSeek
)

// ProviderDef holds the defaults for one provider.
type ProviderDef struct {
	ID             ProviderID
	Name           string
	DefaultBaseURL string
	DefaultModel   string
	Protocol       Protocol
	RequiresAPIKey bool
	Description    string
}

var providers = []ProviderDef{
	{ID: ProviderOpenAI, Name: "OpenAI", DefaultBaseURL: "https://api.openai.com/v1", DefaultModel: "gpt-4o-mini", Protocol: ProtocolOpenAI, RequiresAPIKey: true, Description: "OpenAI GPT models"},
	{ID: ProviderAnthropic, Name: "Anthropic", DefaultBaseURL: "https://api.anthropic.com/v1", DefaultModel: "claude-3-haiku-20240307", Protocol: ProtocolAnthropic, RequiresAPIKey: true, Description: "Anthropic Claude models"},
	{ID: ProviderDeepSeek, Name: "DeepSeek", DefaultBaseURL: "https://api.deepseek.com/v1", DefaultModel: "deepseek-chat", Protocol: ProtocolOpenAI, RequiresAPIKey: true, Description: "DeepSeek AI models"},
	{ID: ProviderMoonshot, Name: "Moonshot", DefaultBaseURL: "https://api.moonshot.cn/v1", DefaultModel: "moonshot-v1-8k", Protocol: ProtocolOpenAI, RequiresAPIKey: true, Description: "Moonshot (Kimi) AI models"},
	{ID: ProviderZhipuAI, Name: "ZhipuAI", DefaultBaseURL: "https://open.bigmodel.cn/api/paas/v4", DefaultModel: "glm-4-flash", Protocol: ProtocolOpenAI, RequiresAPIKey: true, Description: "Zhipu GLM models"},
	{ID: ProviderQwen, Name: "Qwen", DefaultBaseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1", DefaultModel: "qwen-turbo", Protocol: ProtocolOpenAI, RequiresAPIKey: true, Description: "Alibaba Qwen models (DashScope)"},
	{ID: ProviderGroq, Name: "Groq", DefaultBaseURL: "https://api.groq.com/openai/v1", DefaultModel: "llama-3.1-8b-instant", Protocol: ProtocolOpenAI, RequiresAPIKey: true, Description: "Groq LPU inference"},
	// genai supplies the Gemini endpoint; DefaultBaseURL is informational.
	{ID: ProviderGemini, Name: "Gemini", DefaultBaseURL: "https://generativelanguage.googleapis.com/", DefaultModel: "gemini-1.5-flash", Protocol: ProtocolGemini, RequiresAPIKey: true, Description: "Google Gemini models"},
	{ID: ProviderMistral, Name: "Mistral", DefaultBaseURL: "https://api.mistral.ai/v1", DefaultModel: "mistral-small-latest", Protocol: ProtocolOpenAI, RequiresAPIKey: true, Description: "Mistral AI models"},
	{ID: ProviderCohere, Name: "Cohere", DefaultBaseURL: "https://api.cohere.ai/v1", DefaultModel: "command-r", Protocol: ProtocolOpenAI, RequiresAPIKey: true, Description: "Cohere Command models"},
	{ID: ProviderOllama, Name: "Ollama", DefaultBaseURL: "http://localhost:11434/v1", DefaultModel: "llama3", Protocol: ProtocolOpenAI, RequiresAPIKey: false, Description: "Ollama local models"},
	{ID: ProviderOpenRouter, Name: "OpenRouter", DefaultBaseURL: "https://openrouter.ai/api/v1", DefaultModel: "openai/gpt-4o-mini", Protocol: ProtocolOpenAI, RequiresAPIKey: true, Description: "OpenRouter unified API"},
	{ID: ProviderTogetherAI, Name: "TogetherAI", DefaultBaseURL: "https://api.together.xyz/v1", DefaultModel: "meta-llama/Llama-3-8b-chat-hf", Protocol: ProtocolOpenAI, RequiresAPIKey: true, Description: "Together AI inference"},
	{ID: ProviderPerplexity, Name: "Perplexity", DefaultBaseURL: "https://api.perplexity.ai", DefaultModel: "llama-3.1-sonar-small-128k-online", Protocol: ProtocolOpenAI, RequiresAPIKey: true, Description: "Perplexity AI models"},
	{ID: ProviderSiliconFlow, Name: "SiliconFlow", DefaultBaseURL: "https://api.siliconflow.cn/v1", DefaultModel: "Qwen/Qwen2.5-7B-Instruct", Protocol: ProtocolOpenAI, RequiresAPIKey: true, Description: "SiliconFlow inference"},
}

var providerAliases = map[string]ProviderID{
	"zhipu":     ProviderZhipuAI,
	"dashscope": ProviderQwen,
	"google":    ProviderGemini,
	"together":  ProviderTogetherAI,
}

// Providers returns every supported provider definition.
func Providers() []ProviderDef {
	out := make([]ProviderDef, len(providers))
	copy(out, providers)
	return out
}

// ParseProviderID resolves a provider name or alias, case-insensitively.
func ParseProviderID(value string) (ProviderID, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if id, ok := providerAliases[value]; ok {
		return id, true
	}
	for _, def := range providers {
		if string(def.ID) == value {
			return def.ID, true
		}
	}
	return "", false
}

// Definition returns the provider's defaults, falling back to DefaultProvider.
func (id ProviderID) Definition() ProviderDef {
	for _, def := range providers {
		if def.ID == id {
			return def
		}
	}
	return DefaultProvider.Definition()
}

func (id ProviderID) String() string {
	return id.Definition().Name
}
