package groq

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksim/stocksim/internal/domain"
)

const profileJSON = `{"client": {"name": "Neha Iyer", "age": 41, "investment_goal": "Retire early", "investment_amount": 25000, "risk_tolerance": "medium", "personal_story": "Neha runs a bakery."}}`

func completionServer(t *testing.T, content string, gotBody *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if gotBody != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(gotBody))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   DefaultModel,
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]interface{}{"role": "assistant", "content": content},
			}},
		})
	}))
}

func TestGenerateProfile(t *testing.T) {
	var body map[string]interface{}
	srv := completionServer(t, "```json\n"+profileJSON+"\n```", &body)
	defer srv.Close()

	g := NewGenerator("test-key", zerolog.Nop(), WithBaseURL(srv.URL+"/openai/v1"))
	profile, err := g.GenerateProfile(context.Background(), domain.DifficultyHard, 18)
	require.NoError(t, err)

	assert.Equal(t, "Neha Iyer", profile.Name)
	assert.Equal(t, 41, profile.Age)
	assert.Equal(t, 25000.0, profile.InvestmentAmount)
	assert.Equal(t, domain.DifficultyHard, profile.Difficulty)
	assert.Equal(t, 18, profile.TimeSpan)
	_, err = uuid.Parse(profile.ID)
	assert.NoError(t, err)

	assert.Equal(t, DefaultModel, body["model"])
	assert.EqualValues(t, maxTokens, body["max_tokens"])
	messages := body["messages"].([]interface{})
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].(map[string]interface{})["content"], "Difficulty: hard")
}

func TestGenerateProfile_MissingClientKey(t *testing.T) {
	srv := completionServer(t, `{"persona": {"name": "X"}}`, nil)
	defer srv.Close()

	g := NewGenerator("test-key", zerolog.Nop(), WithBaseURL(srv.URL+"/openai/v1"), WithModel("llama3-8b"))
	_, err := g.GenerateProfile(context.Background(), domain.DifficultyEasy, 12)

	var perr *ProfileError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "Missing 'client' key in response", perr.Message)
	assert.Equal(t, `{"persona": {"name": "X"}}`, perr.Response)
}

func TestGenerateProfile_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"model decommissioned","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	g := NewGenerator("test-key", zerolog.Nop(), WithBaseURL(srv.URL+"/openai/v1"))
	_, err := g.GenerateProfile(context.Background(), domain.DifficultyEasy, 12)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "groq API error")

	var perr *ProfileError
	assert.False(t, errors.As(err, &perr))
}

func TestParseProfile(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{name: "plain json", raw: profileJSON},
		{name: "json fence", raw: "```json\n" + profileJSON + "\n```"},
		{name: "bare fence", raw: "```\n" + profileJSON + "\n```"},
		{name: "not json", raw: "Sure! Here is a client.", wantErr: "Invalid JSON format received from Groq API"},
		{name: "missing client", raw: `{"name": "X"}`, wantErr: "Missing 'client' key in response"},
		{name: "client not object", raw: `{"client": "X"}`, wantErr: "Invalid client profile received from Groq API"},
		{name: "nameless client", raw: `{"client": {"age": 30}}`, wantErr: "Client profile has no name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := ParseProfile(tt.raw)
			if tt.wantErr != "" {
				var perr *ProfileError
				require.True(t, errors.As(err, &perr))
				assert.Equal(t, tt.wantErr, perr.Message)
				assert.NotEmpty(t, perr.Response)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Neha Iyer", profile.Name)
			assert.Equal(t, "medium", profile.RiskTolerance)
		})
	}
}

func TestOfflineGenerator(t *testing.T) {
	g := NewOfflineGenerator(rand.New(rand.NewSource(3)))

	for _, d := range []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard} {
		profile, err := g.GenerateProfile(context.Background(), d, 24)
		require.NoError(t, err)

		assert.Contains(t, names, profile.Name)
		assert.GreaterOrEqual(t, profile.Age, minAge)
		assert.LessOrEqual(t, profile.Age, maxAge)
		assert.Contains(t, traits[d].amounts, profile.InvestmentAmount)
		assert.Equal(t, traits[d].tolerance, profile.RiskTolerance)
		assert.Equal(t, d, profile.Difficulty)
		assert.Equal(t, 24, profile.TimeSpan)
		assert.Contains(t, profile.PersonalStory, profile.Name)
	}

	_, err := g.GenerateProfile(context.Background(), domain.Difficulty("insane"), 12)
	assert.Error(t, err)
}

func TestOfflineGenerator_Deterministic(t *testing.T) {
	a, err := NewOfflineGenerator(rand.New(rand.NewSource(11))).GenerateProfile(context.Background(), domain.DifficultyMedium, 6)
	require.NoError(t, err)
	b, err := NewOfflineGenerator(rand.New(rand.NewSource(11))).GenerateProfile(context.Background(), domain.DifficultyMedium, 6)
	require.NoError(t, err)

	assert.Equal(t, a.Name, b.Name)
	assert.Equal(t, a.Age, b.Age)
	assert.Equal(t, a.InvestmentAmount, b.InvestmentAmount)
	assert.NotEqual(t, a.ID, b.ID)
}
