package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stocksim/stocksim/internal/clients/groq"
	"github.com/stocksim/stocksim/internal/domain"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateProfile(ctx context.Context, difficulty domain.Difficulty, timeSpan int) (*domain.ClientProfile, error) {
	args := m.Called(ctx, difficulty, timeSpan)
	if p := args.Get(0); p != nil {
		return p.(*domain.ClientProfile), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestHandleGenerateClient(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("GenerateProfile", mock.Anything, domain.DifficultyMedium, 12).Return(&domain.ClientProfile{
		ID: "id-1", Name: "Neha Iyer", Age: 41, Difficulty: domain.DifficultyMedium, TimeSpan: 12,
	}, nil)
	gen.On("GenerateProfile", mock.Anything, domain.DifficultyHard, 12).Return(nil, &groq.ProfileError{
		Message: "Invalid JSON format received from Groq API", Response: "not json",
	})
	gen.On("GenerateProfile", mock.Anything, domain.DifficultyEasy, 12).Return(nil, errors.New("connection refused"))

	r := chi.NewRouter()
	NewHandler(gen, zerolog.Nop()).RegisterRoutes(r)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   map[string]interface{}
	}{
		{
			name:       "generated",
			path:       "/generate_client/Medium/12",
			wantStatus: http.StatusOK,
			wantBody: map[string]interface{}{
				"id": "id-1", "name": "Neha Iyer", "age": 41.0, "difficulty": "medium", "time_span": 12.0,
				"investment_goal": "", "investment_amount": 0.0, "risk_tolerance": "", "personal_story": "",
			},
		},
		{
			name:       "unusable model output",
			path:       "/generate_client/hard/12",
			wantStatus: http.StatusBadGateway,
			wantBody:   map[string]interface{}{"error": "Invalid JSON format received from Groq API", "response": "not json"},
		},
		{
			name:       "upstream down",
			path:       "/generate_client/easy/12",
			wantStatus: http.StatusBadGateway,
			wantBody:   map[string]interface{}{"error": "Failed to generate client profile"},
		},
		{name: "unknown difficulty", path: "/generate_client/extreme/12", wantStatus: http.StatusBadRequest},
		{name: "non-numeric time span", path: "/generate_client/easy/soon", wantStatus: http.StatusBadRequest},
		{name: "zero time span", path: "/generate_client/easy/0", wantStatus: http.StatusBadRequest},
		{name: "time span too long", path: "/generate_client/easy/601", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.wantBody != nil {
				assert.Equal(t, tt.wantBody, body)
			} else {
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}
