package achievement

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// IDSet is a set of achievement IDs.
type IDSet map[int]struct{}

func (s IDSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// Evaluator runs the rule table over one Input.
type Evaluator struct {
	catalog *Catalog
	preds   map[int]Predicate
	workers int
	metrics *Metrics
	logger  *zap.Logger
}

// NewEvaluator creates an Evaluator. workers <= 1 evaluates sequentially.
func NewEvaluator(catalog *Catalog, preds map[int]Predicate, workers int, metrics *Metrics, logger *zap.Logger) *Evaluator {
	if workers < 1 {
		workers = 1
	}
	return &Evaluator{catalog: catalog, preds: preds, workers: workers, metrics: metrics, logger: logger}
}

func (e *Evaluator) Catalog() *Catalog { return e.catalog }

// Evaluate returns, in ascending order, every catalog ID not in awarded whose
// predicate holds for in. A failing predicate counts as false and never stops
// the pass. The only error is ctx cancellation.
func (e *Evaluator) Evaluate(ctx context.Context, in *Input, awarded IDSet) ([]int, error) {
	ids := e.catalog.IDs()
	hits := make([]bool, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, id := range ids {
		if awarded.Has(id) {
			continue
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			hits[i] = e.Check(id, in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []int
	for i, ok := range hits {
		if ok {
			out = append(out, ids[i])
		}
	}
	return out, nil
}

// Check evaluates a single achievement. Unknown IDs and panics are logged
// and reported as false.
func (e *Evaluator) Check(id int, in *Input) (ok bool) {
	pred, found := e.preds[id]
	if !found {
		e.logger.Error("no rule for achievement", zap.Int("achievement_id", id))
		e.metrics.PredicateFailures.WithLabelValues("unknown").Inc()
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("achievement rule panicked",
				zap.Int("achievement_id", id), zap.String("panic", fmt.Sprint(r)))
			e.metrics.PredicateFailures.WithLabelValues("panic").Inc()
			ok = false
		}
	}()
	return pred(in)
}
