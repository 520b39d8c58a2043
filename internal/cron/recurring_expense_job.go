package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/eggtrade-backend/pkg/logger"
	"github.com/angelmondragon/eggtrade-backend/pkg/metrics"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

const recurringExpenseJobName = "recurring-expenses"

type RecurringExpenseJobParams struct {
	Logger    *logger.Logger
	Generator recurringExpenseGenerator
	// Location decides which calendar day counts as today.
	Location *time.Location
	Metrics  *metrics.CronJobMetrics
}

type recurringExpenseGenerator interface {
	GenerateDue(ctx context.Context, asOf types.Date) (int, error)
}

func NewRecurringExpenseJob(params RecurringExpenseJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Generator == nil {
		return nil, fmt.Errorf("recurring expense generator required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &recurringExpenseJob{
		logg:    params.Logger,
		gen:     params.Generator,
		loc:     loc,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

type recurringExpenseJob struct {
	logg    *logger.Logger
	gen     recurringExpenseGenerator
	loc     *time.Location
	metrics *metrics.CronJobMetrics
	now     func() time.Time
}

func (j *recurringExpenseJob) Name() string { return recurringExpenseJobName }

func (j *recurringExpenseJob) Run(ctx context.Context) error {
	asOf := types.DateIn(j.now(), j.loc)
	created, err := j.gen.GenerateDue(ctx, asOf)
	j.metrics.AddCreated(recurringExpenseJobName, created)

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"as_of":   asOf.String(),
		"created": created,
	})
	if err != nil {
		return fmt.Errorf("recurring expenses: %w", err)
	}
	j.logg.Info(logCtx, "recurring expenses generated")
	return nil
}
