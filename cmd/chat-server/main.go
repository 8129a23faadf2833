// Command chat-server is a chi-based HTTP front-end over the polymorphic
// client, mounting a provider behind /v1/chat (JSON) and /v1/chat/stream
// (SSE). Grounded on the teacher's examples/chi-server, generalized from a
// single OpenAI-only /generate route to a provider-selectable chat API
// backed by pkg/client.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/corvidai/gollm/pkg/client"
	"github.com/corvidai/gollm/pkg/httpexec"
	mw "github.com/corvidai/gollm/pkg/middleware"
	"github.com/corvidai/gollm/pkg/provider"
	"github.com/corvidai/gollm/pkg/providers/anthropic"
	"github.com/corvidai/gollm/pkg/providers/gemini"
	"github.com/corvidai/gollm/pkg/providers/openai"
	"github.com/corvidai/gollm/pkg/providers/openaicompat"
	"github.com/corvidai/gollm/pkg/types"
)

// server holds one Client per supported provider id, selected per request by
// the "provider" field in the request body.
type server struct {
	clients map[string]*client.Client
}

func newServer() *server {
	s := &server{clients: make(map[string]*client.Client)}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		s.register(openai.New(), openai.DefaultBaseURL, key)
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		s.register(anthropic.New(), anthropic.DefaultBaseURL, key)
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		s.register(gemini.New(), "https://generativelanguage.googleapis.com", key)
	}
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		compat := openaicompat.Groq()
		s.register(compat, "", key)
	}
	if key := os.Getenv("XAI_API_KEY"); key != "" {
		compat := openaicompat.XAI()
		s.register(compat, "", key)
	}

	return s
}

func (s *server) register(spec provider.Spec, baseURL, apiKey string) {
	ctx := provider.Context{
		ProviderID: spec.ID(),
		BaseURL:    baseURL,
		APIKey:     provider.NewSecret(apiKey),
	}
	exec := httpexec.New(baseURL, &http.Client{Timeout: 120 * time.Second})
	pipeline := mw.NewPipeline()
	s.clients[spec.ID()] = client.New(spec, ctx, exec, pipeline)
}

func (s *server) pick(providerID string) (*client.Client, error) {
	if providerID == "" {
		for _, c := range s.clients {
			return c, nil
		}
		return nil, fmt.Errorf("no provider configured")
	}
	c, ok := s.clients[providerID]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", providerID)
	}
	return c, nil
}

type chatRequest struct {
	Provider string `json:"provider"`
	Prompt   string `json:"prompt"`
	Model    string `json:"model"`
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := s.pick(req.Provider)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := c.Generate(r.Context(), toChatRequest(req))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"text":          resp.Text(),
		"usage":         resp.Usage,
		"finish_reason": resp.FinishReason,
	})
}

func (s *server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := s.pick(req.Provider)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	handle, err := c.Stream(r.Context(), toChatRequest(req))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for ev := range handle.Events() {
		payload, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	if err := handle.Err(); err != nil {
		fmt.Fprintf(w, "event: error\ndata: %s\n\n", jsonString(err.Error()))
		flusher.Flush()
	}
}

func toChatRequest(req chatRequest) types.ChatRequest {
	return types.ChatRequest{
		Messages: []types.ChatMessage{
			{Role: types.RoleUser, Content: []types.ContentPart{types.TextPart{Text: req.Prompt}}},
		},
		CommonParams: types.CommonParams{},
		Telemetry: &types.TelemetrySettings{
			Metadata: map[string]any{"modelID": req.Model},
		},
	}
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func main() {
	s := newServer()
	if len(s.clients) == 0 {
		log.Fatal("no provider API keys set (OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY, GROQ_API_KEY, XAI_API_KEY)")
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"service": "gollm chat server",
			"version": "1.0.0",
		})
	})
	r.Post("/v1/chat", s.handleChat)
	r.Post("/v1/chat/stream", s.handleChatStream)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("chat-server listening on :%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}
