package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"finbot/internal/domain"
	"finbot/internal/repository"
)

// Resolution classifies the outcome of a name lookup.
type Resolution int

const (
	// ResolutionNone means nothing matched at or above the threshold.
	ResolutionNone Resolution = iota
	// ResolutionFuzzy means the best candidate scored in [threshold, 100)
	// and needs user confirmation.
	ResolutionFuzzy
	// ResolutionExact means an alias hit or a score of exactly 100; no
	// confirmation needed.
	ResolutionExact
)

// Match is the result of resolving a free-text name.
type Match struct {
	Resolution Resolution
	EntityID   uuid.UUID
	Name       string // matched entity name, empty for ResolutionNone
	Score      int    // 0..100, 100 for alias hits
}

// Resolver maps free-text wallet and category names to entity IDs. Three
// tiers, in order: exact alias match, exact name match, fuzzy name match.
// Read-only; it never mutates the store.
type Resolver struct {
	store     repository.Registry
	threshold int
}

// NewResolver creates a resolver with the configured fuzzy threshold.
func NewResolver(store repository.Registry, threshold int) *Resolver {
	return &Resolver{store: store, threshold: threshold}
}

type candidate struct {
	id   uuid.UUID
	name string
}

// Resolve looks up input for the user among entities of the given kind.
func (r *Resolver) Resolve(user *domain.User, kind domain.EntityKind, input string) (Match, error) {
	input = strings.ToLower(strings.TrimSpace(input))

	// Tier 1: learned aliases win over everything, regardless of how the
	// input scores against real names.
	switch kind {
	case domain.KindCategory:
		alias, err := r.store.Categories().FindAliasByText(user.ID, input)
		if err != nil {
			return Match{}, fmt.Errorf("find category alias: %w", err)
		}
		if alias != nil {
			return r.aliasMatch(kind, alias.Category)
		}
	case domain.KindWallet:
		alias, err := r.store.Wallets().FindAliasByText(user.ID, input)
		if err != nil {
			return Match{}, fmt.Errorf("find wallet alias: %w", err)
		}
		if alias != nil {
			return r.aliasMatch(kind, alias.Wallet)
		}
	default:
		return Match{}, fmt.Errorf("unknown entity kind %q", kind)
	}

	candidates, err := r.candidates(user, kind)
	if err != nil {
		return Match{}, err
	}
	if len(candidates) == 0 {
		return Match{Resolution: ResolutionNone}, nil
	}

	// Tiers 2 and 3: single best-scoring candidate. An exact name equals
	// a score of 100 and skips the confirmation prompt.
	best := candidates[0]
	bestScore := -1
	for _, c := range candidates {
		score := fuzzy.WRatio(input, c.name)
		if c.name == input {
			score = 100
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}

	switch {
	case bestScore == 100:
		return Match{Resolution: ResolutionExact, EntityID: best.id, Name: best.name, Score: bestScore}, nil
	case bestScore >= r.threshold:
		return Match{Resolution: ResolutionFuzzy, EntityID: best.id, Name: best.name, Score: bestScore}, nil
	default:
		return Match{Resolution: ResolutionNone}, nil
	}
}

func (r *Resolver) candidates(user *domain.User, kind domain.EntityKind) ([]candidate, error) {
	if kind == domain.KindCategory {
		categories, err := r.store.Categories().ListByHolder(user.ID)
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		out := make([]candidate, len(categories))
		for i, c := range categories {
			out[i] = candidate{id: c.ID, name: c.Name}
		}
		return out, nil
	}

	wallets, err := r.store.Wallets().ListByHolder(user.ID)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	out := make([]candidate, len(wallets))
	for i, w := range wallets {
		out[i] = candidate{id: w.ID, name: w.Name}
	}
	return out, nil
}

func (r *Resolver) aliasMatch(kind domain.EntityKind, target uuid.UUID) (Match, error) {
	name := ""
	if kind == domain.KindCategory {
		c, err := r.store.Categories().GetByID(target)
		if err != nil {
			return Match{}, fmt.Errorf("load aliased category: %w", err)
		}
		if c != nil {
			name = c.Name
		}
	} else {
		w, err := r.store.Wallets().GetByID(target)
		if err != nil {
			return Match{}, fmt.Errorf("load aliased wallet: %w", err)
		}
		if w != nil {
			name = w.Name
		}
	}
	return Match{Resolution: ResolutionExact, EntityID: target, Name: name, Score: 100}, nil
}
