package sim

import (
	"context"
	"sync"

	"github.com/san-kum/xpbd2d/internal/world"
)

// Sweep runs one scene under several substep counts at once. Every run
// steps its own clone of the base world with its own metric set.
type Sweep struct {
	base     *world.World
	substeps []int
	metrics  func() []Metric
}

// NewSweep prepares a sweep over substeps. newMetrics may be nil; otherwise
// it is called once per run so metrics are never shared between goroutines.
func NewSweep(base *world.World, substeps []int, newMetrics func() []Metric) *Sweep {
	return &Sweep{base: base, substeps: substeps, metrics: newMetrics}
}

// Run returns one result per substep count, in the order given. The base
// world is left untouched.
func (s *Sweep) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(s.substeps))
	errs := make([]error, len(s.substeps))

	// Clone up front so no goroutine ever reads the base world.
	worlds := make([]*world.World, len(s.substeps))
	for i := range worlds {
		worlds[i] = s.base.Clone()
	}

	var wg sync.WaitGroup
	for i, n := range s.substeps {
		wg.Add(1)
		go func(idx, n int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Params.Substeps = n

			sim := New()
			if s.metrics != nil {
				for _, m := range s.metrics() {
					sim.AddMetric(m)
				}
			}

			results[idx], errs[idx] = sim.Run(ctx, worlds[idx], cfgCopy)
		}(i, n)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
