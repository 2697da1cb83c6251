package profiles

import (
	"context"
	"errors"
	"testing"

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

func TestGenerateProfile(t *testing.T) {
	primaryProfile := &domain.ClientProfile{Name: "primary"}
	fallbackProfile := &domain.ClientProfile{Name: "fallback"}
	profileErr := &groq.ProfileError{Message: "Missing 'client' key in response", Response: "{}"}

	tests := []struct {
		name        string
		primaryErr  error
		withBackup  bool
		wantName    string
		wantErr     error
		backupCalls int
	}{
		{name: "primary succeeds", withBackup: true, wantName: "primary"},
		{name: "primary unreachable", primaryErr: errors.New("dial tcp"), withBackup: true, wantName: "fallback", backupCalls: 1},
		{name: "unusable answer is not masked", primaryErr: profileErr, withBackup: true, wantErr: profileErr},
		{name: "no fallback", primaryErr: errors.New("dial tcp"), wantErr: errors.New("dial tcp")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := new(mockGenerator)
			if tt.primaryErr != nil {
				primary.On("GenerateProfile", mock.Anything, domain.DifficultyHard, 24).Return(nil, tt.primaryErr)
			} else {
				primary.On("GenerateProfile", mock.Anything, domain.DifficultyHard, 24).Return(primaryProfile, nil)
			}

			var backup domain.ProfileGenerator
			fallback := new(mockGenerator)
			fallback.On("GenerateProfile", mock.Anything, domain.DifficultyHard, 24).Return(fallbackProfile, nil)
			if tt.withBackup {
				backup = fallback
			}

			profile, err := NewService(primary, backup, zerolog.Nop()).GenerateProfile(context.Background(), domain.DifficultyHard, 24)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr.Error(), err.Error())
				assert.Nil(t, profile)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantName, profile.Name)
			}
			fallback.AssertNumberOfCalls(t, "GenerateProfile", tt.backupCalls)
		})
	}
}
