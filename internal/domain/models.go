package domain

import (
	"fmt"
	"strings"
	"time"
)

// PricePoint is one daily close.
type PricePoint struct {
	Date  time.Time `json:"date" msgpack:"date"`
	Close float64   `json:"close" msgpack:"close"`
}

// Difficulty of a generated client
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty normalizes user input into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

// ClientProfile is a generated investor persona
type ClientProfile struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Age              int        `json:"age"`
	InvestmentGoal   string     `json:"investment_goal"`
	InvestmentAmount float64    `json:"investment_amount"`
	RiskTolerance    string     `json:"risk_tolerance"`
	PersonalStory    string     `json:"personal_story"`
	Difficulty       Difficulty `json:"difficulty"`
	TimeSpan         int        `json:"time_span"`
}
