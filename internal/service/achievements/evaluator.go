package achievements

import (
	"context"
	"fmt"
	"time"

	"github.com/aimd54/geoquest/internal/config"
	"github.com/aimd54/geoquest/internal/models"
	"github.com/aimd54/geoquest/pkg/logger"
)

// Rule is one catalog entry: unlock when the criterion statistic reaches Threshold.
type Rule struct {
	ID               uint
	Name             string
	Description      string
	Criterion        models.CriterionKind
	Threshold        int
	UnlockedImageURL string
}

// Satisfied reports whether stats meet the rule.
func (r Rule) Satisfied(stats models.UserStats) bool {
	switch r.Criterion {
	case models.CriterionTotalUniqueVisits:
		return stats.UniqueVisits >= r.Threshold
	case models.CriterionUniqueMunicipalities:
		return stats.UniqueMunicipalities >= r.Threshold
	default:
		return false
	}
}

// Definition returns the row that represents the rule in the achievements table.
func (r Rule) Definition() models.Achievement {
	return models.Achievement{
		ID:               r.ID,
		Name:             r.Name,
		Description:      r.Description,
		Criterion:        r.Criterion,
		Threshold:        r.Threshold,
		UnlockedImageURL: r.UnlockedImageURL,
	}
}

// Catalog is the ordered, immutable list of rules.
type Catalog []Rule

// CatalogFromConfig validates the configured catalog and converts it to rules.
func CatalogFromConfig(entries []config.AchievementConfig) (Catalog, error) {
	if err := config.ValidateAchievements(entries); err != nil {
		return nil, fmt.Errorf("invalid achievement catalog: %w", err)
	}

	catalog := make(Catalog, 0, len(entries))
	for _, e := range entries {
		catalog = append(catalog, Rule{
			ID:               e.ID,
			Name:             e.Name,
			Description:      e.Description,
			Criterion:        models.CriterionKind(e.Criterion),
			Threshold:        e.Threshold,
			UnlockedImageURL: e.UnlockedImageURL,
		})
	}
	return catalog, nil
}

// Store is the persistence the evaluator writes through. Callers pass a
// transaction-scoped implementation so credits commit or roll back with the visit.
type Store interface {
	GetByIDs(ctx context.Context, ids []uint) (map[uint]models.Achievement, error)
	CreditAchievement(ctx context.Context, userID, achievementID uint, at time.Time) (bool, error)
}

// Evaluator decides which achievements a user unlocks and credits them.
type Evaluator struct {
	catalog Catalog
	log     *logger.Logger
	now     func() time.Time
}

// NewEvaluator creates an evaluator for catalog.
func NewEvaluator(catalog Catalog, log *logger.Logger) *Evaluator {
	return &Evaluator{
		catalog: catalog,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Catalog returns the rules the evaluator checks.
func (e *Evaluator) Catalog() Catalog {
	return e.catalog
}

// Evaluate credits every rule, in catalog order, that stats satisfy and that is
// not in alreadyCredited. It returns the newly credited achievements as persisted.
// Rules without a persisted definition are skipped. A credit that loses a race
// with a concurrent one is not returned.
func (e *Evaluator) Evaluate(
	ctx context.Context,
	store Store,
	userID uint,
	stats models.UserStats,
	alreadyCredited map[uint]bool,
) ([]models.Achievement, error) {
	var candidates []Rule
	for _, rule := range e.catalog {
		if alreadyCredited[rule.ID] || !rule.Satisfied(stats) {
			continue
		}
		candidates = append(candidates, rule)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]uint, len(candidates))
	for i, rule := range candidates {
		ids[i] = rule.ID
	}
	definitions, err := store.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := e.now()
	var unlocked []models.Achievement
	for _, rule := range candidates {
		def, ok := definitions[rule.ID]
		if !ok {
			e.log.Warn().
				Uint("achievement_id", rule.ID).
				Str("achievement", rule.Name).
				Msg("Achievement has no persisted definition, skipping")
			continue
		}

		credited, err := store.CreditAchievement(ctx, userID, rule.ID, now)
		if err != nil {
			return nil, err
		}
		if !credited {
			e.log.Debug().
				Uint("user_id", userID).
				Uint("achievement_id", rule.ID).
				Msg("Achievement already credited")
			continue
		}

		unlocked = append(unlocked, def)
	}

	return unlocked, nil
}
