// Package ballot reads the vote plan used by headless ballot mode.
package ballot

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"wallet_vote/internal/types"

	"gopkg.in/yaml.v3"
)

var (
	ErrBallotNotFound    = errors.New("ballot file not found")
	ErrBallotParseFailed = errors.New("ballot file parse failed")
	ErrEmptyBallot       = errors.New("ballot has no votes")
	ErrInvalidEntry      = errors.New("invalid ballot entry")
)

// Entry is one planned vote.
type Entry struct {
	Category  string `yaml:"category"`
	Candidate string `yaml:"candidate"`
}

// Plan is the set of votes every wallet casts.
type Plan struct {
	Order types.ProcessOrder `yaml:"order"`
	Votes []Entry            `yaml:"votes"`
}

// Load reads and validates a plan from path.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrBallotNotFound, path)
		}
		return nil, fmt.Errorf("failed to read ballot file %s: %w", path, err)
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBallotParseFailed, path, err)
	}
	if plan.Order == "" {
		plan.Order = types.OrderSequential
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Validate rejects empty plans, blank slugs and two votes in one category.
func (p *Plan) Validate() error {
	if len(p.Votes) == 0 {
		return ErrEmptyBallot
	}
	switch p.Order {
	case types.OrderSequential, types.OrderRandom:
	default:
		return fmt.Errorf("%w: order %q", ErrInvalidEntry, p.Order)
	}
	seen := make(map[string]bool, len(p.Votes))
	for i, v := range p.Votes {
		if strings.TrimSpace(v.Category) == "" || strings.TrimSpace(v.Candidate) == "" {
			return fmt.Errorf("%w: vote %d needs both category and candidate", ErrInvalidEntry, i+1)
		}
		if seen[v.Category] {
			return fmt.Errorf("%w: category %q appears twice", ErrInvalidEntry, v.Category)
		}
		seen[v.Category] = true
	}
	return nil
}
