package groq

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/stocksim/stocksim/internal/domain"
)

var names = []string{
	"Janardhan Patel", "Keerthi Gupta", "Suresh Kumar", "Ananya Singh", "Rahul Sharma",
	"Priya Reddy", "Amit Verma", "Neha Iyer", "Rajesh Khanna", "Sneha Menon",
}

const (
	minAge = 20
	maxAge = 64
)

var goals = []string{
	"Saving for a first home",
	"Building a retirement cushion",
	"Funding a child's education",
	"Starting a small business",
	"Taking a year off to travel",
}

type difficultyTraits struct {
	amounts   []float64
	tolerance string
	// goal multiple applied to the amount when telling the story
	multiple float64
}

var traits = map[domain.Difficulty]difficultyTraits{
	domain.DifficultyEasy:   {amounts: []float64{50000, 75000, 100000}, tolerance: "high", multiple: 1.05},
	domain.DifficultyMedium: {amounts: []float64{20000, 30000, 50000}, tolerance: "medium", multiple: 1.15},
	domain.DifficultyHard:   {amounts: []float64{5000, 10000, 15000}, tolerance: "low", multiple: 1.3},
}

// OfflineGenerator builds personas locally. It is used when no AI provider
// is configured and is safe for concurrent use.
type OfflineGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewOfflineGenerator creates an offline generator drawing from rng.
func NewOfflineGenerator(rng *rand.Rand) *OfflineGenerator {
	if rng == nil {
		//nolint:gosec // G404: persona selection does not need crypto randomness
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &OfflineGenerator{rng: rng}
}

// GenerateProfile implements domain.ProfileGenerator.
func (g *OfflineGenerator) GenerateProfile(ctx context.Context, difficulty domain.Difficulty, timeSpan int) (*domain.ClientProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, ok := traits[difficulty]
	if !ok {
		return nil, fmt.Errorf("unknown difficulty %q", difficulty)
	}

	g.mu.Lock()
	name := names[g.rng.Intn(len(names))]
	age := minAge + g.rng.Intn(maxAge-minAge+1)
	goal := goals[g.rng.Intn(len(goals))]
	amount := t.amounts[g.rng.Intn(len(t.amounts))]
	g.mu.Unlock()

	return &domain.ClientProfile{
		ID:               uuid.NewString(),
		Name:             name,
		Age:              age,
		InvestmentGoal:   goal,
		InvestmentAmount: amount,
		RiskTolerance:    t.tolerance,
		PersonalStory: fmt.Sprintf("%s is %d and wants to turn %.0f into %.0f within %d months. %s is the priority.",
			name, age, amount, amount*t.multiple, timeSpan, goal),
		Difficulty: difficulty,
		TimeSpan:   timeSpan,
	}, nil
}
