// Package profiles generates the client personas players invest for.
package profiles

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/stocksim/stocksim/internal/clients/groq"
	"github.com/stocksim/stocksim/internal/domain"
)

// MaxTimeSpan is the longest investment horizon, in months, a client may ask for.
const MaxTimeSpan = 600

// Service tries the primary generator and falls back to a secondary one when
// the primary cannot be reached. A primary that answers with an unusable
// profile is reported as is so the caller sees what the model said.
type Service struct {
	primary  domain.ProfileGenerator
	fallback domain.ProfileGenerator
	log      zerolog.Logger
}

// NewService creates a profile service. fallback may be nil.
func NewService(primary, fallback domain.ProfileGenerator, log zerolog.Logger) *Service {
	return &Service{
		primary:  primary,
		fallback: fallback,
		log:      log.With().Str("component", "profiles").Logger(),
	}
}

// GenerateProfile implements domain.ProfileGenerator.
func (s *Service) GenerateProfile(ctx context.Context, difficulty domain.Difficulty, timeSpan int) (*domain.ClientProfile, error) {
	profile, err := s.primary.GenerateProfile(ctx, difficulty, timeSpan)
	if err == nil {
		return profile, nil
	}

	var profileErr *groq.ProfileError
	if s.fallback == nil || errors.As(err, &profileErr) || ctx.Err() != nil {
		return nil, err
	}

	s.log.Warn().Err(err).Msg("Profile generator unavailable, using fallback")
	return s.fallback.GenerateProfile(ctx, difficulty, timeSpan)
}
