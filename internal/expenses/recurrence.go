package expenses

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/eggtrade-backend/pkg/db"
	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
	"github.com/angelmondragon/eggtrade-backend/pkg/logger"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

// maxOccurrencesPerRun bounds how far one template is backfilled in a single run.
const maxOccurrencesPerRun = 400

type recurrenceRepository interface {
	ListDueTemplates(ctx context.Context, asOf types.Date) ([]models.Expense, error)
	OccurrenceDates(ctx context.Context, parentID uuid.UUID) ([]types.Date, error)
	Create(ctx context.Context, expense *models.Expense) error
}

// RecurrenceGenerator writes the occurrences of recurring expenses that have
// come due. Occurrences are plain expenses pointing back at their template.
type RecurrenceGenerator struct {
	repo recurrenceRepository
	logg *logger.Logger
}

func NewRecurrenceGenerator(repo recurrenceRepository, logg *logger.Logger) (*RecurrenceGenerator, error) {
	if repo == nil {
		return nil, fmt.Errorf("expenses repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &RecurrenceGenerator{repo: repo, logg: logg}, nil
}

// GenerateDue creates every missing occurrence dated on or before asOf and
// returns how many were written. A failing template does not stop the others;
// their errors are combined.
func (g *RecurrenceGenerator) GenerateDue(ctx context.Context, asOf types.Date) (int, error) {
	templates, err := g.repo.ListDueTemplates(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("list recurring expenses: %w", err)
	}

	created := 0
	var errs error
	for i := range templates {
		n, err := g.generateFor(ctx, &templates[i], asOf)
		created += n
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expense %s: %w", templates[i].ID, err))
		}
	}
	return created, errs
}

func (g *RecurrenceGenerator) generateFor(ctx context.Context, template *models.Expense, asOf types.Date) (int, error) {
	if template.RecurrencePattern == nil {
		return 0, nil
	}
	pattern := *template.RecurrencePattern
	if !pattern.IsValid() {
		return 0, fmt.Errorf("unknown recurrence pattern %q", pattern)
	}

	last := asOf
	if template.RecurrenceEndDate != nil && template.RecurrenceEndDate.Before(last) {
		last = *template.RecurrenceEndDate
	}

	dates, err := g.repo.OccurrenceDates(ctx, template.ID)
	if err != nil {
		return 0, err
	}
	existing := make(map[types.Date]struct{}, len(dates))
	for _, d := range dates {
		existing[d] = struct{}{}
	}

	created := 0
	for k := 1; created < maxOccurrencesPerRun; k++ {
		date := NthOccurrence(template.Date, pattern, k)
		if date.After(last) {
			break
		}
		if _, ok := existing[date]; ok {
			continue
		}
		parentID := template.ID
		occurrence := &models.Expense{
			Date:               date,
			CategoryID:         template.CategoryID,
			Description:        template.Description,
			Amount:             template.Amount,
			PaymentMethod:      template.PaymentMethod,
			Notes:              template.Notes,
			RecurrenceParentID: &parentID,
		}
		if err := g.repo.Create(ctx, occurrence); err != nil {
			// another worker wrote it first
			if db.IsUniqueViolation(err, "") {
				continue
			}
			return created, err
		}
		created++
	}

	if created > 0 {
		logCtx := g.logg.WithFields(ctx, map[string]any{
			"expense_id": template.ID.String(),
			"pattern":    string(pattern),
			"created":    created,
		})
		g.logg.Info(logCtx, "expense.recurrence.generated")
	}
	return created, nil
}

// NthOccurrence returns the k-th repetition of start. Monthly and yearly
// repetitions land on the last day of a shorter month instead of spilling over.
func NthOccurrence(start types.Date, pattern enums.RecurrencePattern, k int) types.Date {
	t := start.Time()
	switch pattern {
	case enums.RecurrenceDaily:
		return types.DateOf(t.AddDate(0, 0, k))
	case enums.RecurrenceWeekly:
		return types.DateOf(t.AddDate(0, 0, 7*k))
	case enums.RecurrenceMonthly:
		return addMonthsClamped(t, k)
	case enums.RecurrenceYearly:
		return addMonthsClamped(t, 12*k)
	default:
		return start
	}
}

func addMonthsClamped(t time.Time, months int) types.Date {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return types.NewDate(first.Year(), first.Month(), day)
}
