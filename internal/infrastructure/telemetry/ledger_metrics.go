package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is given to NewLedgerMetrics.
var ErrMeterNil = errors.New("NewLedgerMetrics: meter cannot be nil")

// LedgerMetrics records stock ledger activity.
// All methods are safe on a nil receiver so callers can leave metrics unset.
type LedgerMetrics struct {
	recomputes      *Counter
	drift           *Histogram
	criticalAlerts  *Counter
	commits         *Counter
	rollbacks       *Counter
	publishedEvents *Counter
	jobDuration     *Histogram
	belowReorder    *Gauge
}

// NewLedgerMetrics creates the ledger instruments on meter.
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	lm := &LedgerMetrics{}
	var err error

	if lm.recomputes, err = NewCounter(meter,
		"ims_ledger_recompute_total",
		"Ledger recomputations of an item's current quantity",
		"{recompute}",
	); err != nil {
		return nil, err
	}
	if lm.drift, err = NewHistogram(meter, HistogramOpts{
		Name:        "ims_ledger_recompute_drift",
		Description: "Absolute difference between the cached and recomputed quantity",
		Unit:        "{unit}",
		Boundaries:  DriftBuckets,
	}); err != nil {
		return nil, err
	}
	if lm.criticalAlerts, err = NewCounter(meter,
		"ims_stock_critical_alert_total",
		"Items that reached their critical stock level",
		"{alert}",
	); err != nil {
		return nil, err
	}
	if lm.commits, err = NewCounter(meter,
		"ims_unit_of_work_commit_total",
		"Unit of work commits",
		"{commit}",
	); err != nil {
		return nil, err
	}
	if lm.rollbacks, err = NewCounter(meter,
		"ims_unit_of_work_rollback_total",
		"Unit of work rollbacks",
		"{rollback}",
	); err != nil {
		return nil, err
	}
	if lm.publishedEvents, err = NewCounter(meter,
		"ims_domain_events_published_total",
		"Domain events delivered to the event bus",
		"{event}",
	); err != nil {
		return nil, err
	}
	if lm.jobDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "ims_scheduler_job_duration_seconds",
		Description: "Duration of scheduled ledger jobs",
		Unit:        "s",
		Boundaries:  JobDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if lm.belowReorder, err = NewGauge(meter,
		"ims_items_below_reorder_point",
		"Items at or below their minimum quantity at the last report",
		"{item}",
	); err != nil {
		return nil, err
	}

	return lm, nil
}

// RecordRecompute records a successful recomputation from oldQty to newQty.
func (lm *LedgerMetrics) RecordRecompute(ctx context.Context, oldQty, newQty int) {
	if lm == nil {
		return
	}
	lm.recomputes.Inc(ctx, AttrOutcome.String(OutcomeSuccess))
	drift := newQty - oldQty
	if drift < 0 {
		drift = -drift
	}
	lm.drift.Record(ctx, float64(drift))
}

// RecordRecomputeFailure records a recomputation that was abandoned.
func (lm *LedgerMetrics) RecordRecomputeFailure(ctx context.Context) {
	if lm == nil {
		return
	}
	lm.recomputes.Inc(ctx, AttrOutcome.String(OutcomeFailure))
}

// RecordCriticalAlert counts a critical stock alert.
func (lm *LedgerMetrics) RecordCriticalAlert(ctx context.Context) {
	if lm == nil {
		return
	}
	lm.criticalAlerts.Inc(ctx)
}

// RecordCommit counts a unit of work commit attempt.
func (lm *LedgerMetrics) RecordCommit(ctx context.Context, success bool) {
	if lm == nil {
		return
	}
	lm.commits.Inc(ctx, AttrOutcome.String(outcome(success)))
}

// RecordRollback counts an explicit unit of work rollback.
func (lm *LedgerMetrics) RecordRollback(ctx context.Context) {
	if lm == nil {
		return
	}
	lm.rollbacks.Inc(ctx)
}

// RecordPublished counts an event handed to the bus.
func (lm *LedgerMetrics) RecordPublished(ctx context.Context, eventType string) {
	if lm == nil {
		return
	}
	lm.publishedEvents.Inc(ctx, AttrEventType.String(eventType))
}

// RecordJob records the duration and outcome of a scheduled job.
func (lm *LedgerMetrics) RecordJob(ctx context.Context, job string, d time.Duration, err error) {
	if lm == nil {
		return
	}
	lm.jobDuration.RecordDuration(ctx, d, AttrJob.String(job), AttrOutcome.String(outcome(err == nil)))
}

// RecordBelowReorder records how many items sit at or below their minimum quantity.
func (lm *LedgerMetrics) RecordBelowReorder(ctx context.Context, count int) {
	if lm == nil {
		return
	}
	lm.belowReorder.Record(ctx, int64(count))
}

func outcome(success bool) string {
	if success {
		return OutcomeSuccess
	}
	return OutcomeFailure
}
