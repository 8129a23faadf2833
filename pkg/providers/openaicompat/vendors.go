package openaicompat

// Groq builds a Spec for Groq's OpenAI-compatible chat/embeddings API.
func Groq() *Spec {
	return New(Config{ID: "groq", DefaultBaseURL: "https://api.groq.com/openai/v1"})
}

// XAI builds a Spec for xAI's Grok models.
func XAI() *Spec {
	return New(Config{ID: "xai", DefaultBaseURL: "https://api.x.ai/v1"})
}

// DeepSeek builds a Spec for DeepSeek's API.
func DeepSeek() *Spec {
	return New(Config{ID: "deepseek", DefaultBaseURL: "https://api.deepseek.com/v1"})
}

// Together builds a Spec for Together AI, which also serves rerank.
func Together() *Spec {
	return New(Config{
		ID:             "together",
		DefaultBaseURL: "https://api.together.xyz/v1",
		SupportsRerank: true,
	})
}

// Fireworks builds a Spec for Fireworks AI, which also serves rerank.
func Fireworks() *Spec {
	return New(Config{
		ID:             "fireworks",
		DefaultBaseURL: "https://api.fireworks.ai/inference/v1",
		SupportsRerank: true,
	})
}

// Cerebras builds a Spec for Cerebras's low-latency inference API.
func Cerebras() *Spec {
	return New(Config{ID: "cerebras", DefaultBaseURL: "https://api.cerebras.ai/v1"})
}

// Moonshot builds a Spec for Moonshot AI's Kimi models.
func Moonshot() *Spec {
	return New(Config{ID: "moonshot", DefaultBaseURL: "https://api.moonshot.cn/v1"})
}

// Mistral builds a Spec for Mistral's La Plateforme API.
func Mistral() *Spec {
	return New(Config{ID: "mistral", DefaultBaseURL: "https://api.mistral.ai/v1"})
}

// Generic builds a Spec for any other OpenAI-compatible endpoint, e.g. a
// self-hosted vLLM or LiteLLM gateway, identified by id and baseURL.
func Generic(id, baseURL string) *Spec {
	return New(Config{ID: id, DefaultBaseURL: baseURL})
}
