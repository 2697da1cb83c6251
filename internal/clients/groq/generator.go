// Package groq generates investor personas with an OpenAI-compatible chat
// completion endpoint (Groq by default).
package groq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"

	"github.com/stocksim/stocksim/internal/domain"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible API root.
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	// DefaultModel is the chat model used for personas.
	DefaultModel = "mixtral-8x7b-32768"

	maxTokens   = 300
	temperature = 0.8
)

// ProfileError is returned when the model answered but the answer is not a
// usable profile. Response carries the cleaned model output.
type ProfileError struct {
	Message  string
	Response string
}

func (e *ProfileError) Error() string {
	return e.Message
}

// Generator implements domain.ProfileGenerator against a chat completion API
type Generator struct {
	cli   oa.Client
	model string
	log   zerolog.Logger
}

// Option configures the Generator
type Option func(*settings)

type settings struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// WithBaseURL points the generator at a different OpenAI-compatible API.
func WithBaseURL(baseURL string) Option {
	return func(s *settings) {
		if baseURL != "" {
			s.baseURL = baseURL
		}
	}
}

// WithModel overrides the chat model.
func WithModel(model string) Option {
	return func(s *settings) {
		if model != "" {
			s.model = model
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(s *settings) {
		s.httpClient = httpClient
	}
}

// NewGenerator creates a profile generator using apiKey.
func NewGenerator(apiKey string, log zerolog.Logger, opts ...Option) *Generator {
	s := settings{baseURL: DefaultBaseURL, model: DefaultModel}
	for _, opt := range opts {
		opt(&s)
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(s.baseURL),
		option.WithMaxRetries(1),
	}
	if s.httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(s.httpClient))
	}

	return &Generator{
		cli:   oa.NewClient(clientOpts...),
		model: s.model,
		log:   log.With().Str("client", "groq").Logger(),
	}
}

// GenerateProfile asks the model for a persona and decodes it.
func (g *Generator) GenerateProfile(ctx context.Context, difficulty domain.Difficulty, timeSpan int) (*domain.ClientProfile, error) {
	resp, err := g.cli.Chat.Completions.New(ctx, oa.ChatCompletionNewParams{
		Model: oa.ChatModel(g.model),
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.UserMessage(buildPrompt(difficulty, timeSpan)),
		},
		MaxTokens:   oa.Int(maxTokens),
		Temperature: oa.Float(temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("groq API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("groq API error: no choices returned")
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	g.log.Debug().Str("difficulty", string(difficulty)).Int("time_span", timeSpan).Int("chars", len(raw)).Msg("Profile generated")

	profile, err := ParseProfile(raw)
	if err != nil {
		g.log.Warn().Err(err).Msg("Model returned an unusable profile")
		return nil, err
	}

	profile.ID = uuid.NewString()
	profile.Difficulty = difficulty
	profile.TimeSpan = timeSpan
	return profile, nil
}

var fencePattern = regexp.MustCompile("(?s)^```(?:json)?\\s*\\n?(.*?)\\n?```$")

// StripCodeFences removes a surrounding Markdown code fence, if any.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// ParseProfile decodes a model answer of the form {"client": {...}}.
func ParseProfile(raw string) (*domain.ClientProfile, error) {
	cleaned := StripCodeFences(raw)

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
		return nil, &ProfileError{Message: "Invalid JSON format received from Groq API", Response: cleaned}
	}

	client, ok := envelope["client"]
	if !ok {
		return nil, &ProfileError{Message: "Missing 'client' key in response", Response: cleaned}
	}

	var profile domain.ClientProfile
	if err := json.Unmarshal(client, &profile); err != nil {
		return nil, &ProfileError{Message: "Invalid client profile received from Groq API", Response: cleaned}
	}
	if profile.Name == "" {
		return nil, &ProfileError{Message: "Client profile has no name", Response: cleaned}
	}
	return &profile, nil
}

func buildPrompt(difficulty domain.Difficulty, timeSpan int) string {
	return fmt.Sprintf(`You are a financial AI that creates unique client profiles based on difficulty and investment duration.

Difficulty: %s
Investment duration: %d months

Harder clients have more ambitious goals relative to their investment amount and less patience for risk.

**Return the response as pure JSON ONLY. Do NOT include Markdown formatting, explanations, or extra text.**

Example format:
{
    "client": {
        "name": "Priya Reddy",
        "age": 34,
        "investment_goal": "Saving for her children's education",
        "investment_amount": 20000,
        "risk_tolerance": "medium",
        "personal_story": "Priya Reddy is a 34-year-old mother of two young children. She works as a software engineer..."
    }
}`, difficulty, timeSpan)
}
