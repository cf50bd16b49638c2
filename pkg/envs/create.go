package envs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/snk/pkg/domain"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
)

// Create materializes the named environments, or all of them when names is
// empty, running up to workers creations at once. Unknown names fail before any
// work starts. A failing environment never aborts its siblings: the returned
// Batch carries every outcome and Batch.Failed reports whether any failed.
// The error is non-nil only when the batch could not be attempted at all.
func (m *Manager) Create(ctx context.Context, names []string, workers int) (domain.Batch, error) {
	var defs []domain.EnvironmentDefinition
	if len(names) > 0 {
		for _, name := range names {
			def, err := m.Resolve(name)
			if err != nil {
				return domain.Batch{}, err
			}
			defs = append(defs, def)
		}
	} else {
		defs = m.Definitions()
	}
	if workers < 1 {
		workers = 1
	}

	m.logger.Debug("creating environments", "count", len(defs), "workers", workers, "prefix", m.prefixDir)

	results := make([]domain.CreationResult, len(defs))
	p := pool.New().WithMaxGoroutines(workers)
	for i, def := range defs {
		i, def := i, def
		p.Go(func() {
			results[i] = m.createOne(ctx, def)
		})
	}
	p.Wait()

	batch := domain.Batch{Results: results}
	m.metrics.ObserveBatch(m.location.Name, !batch.Failed())

	// An unsupported engine is a hard failure, not a per-environment one.
	for _, r := range results {
		if errors.Is(r.Err, domain.ErrUnimplemented) {
			return batch, r.Err
		}
	}
	return batch, nil
}

// createOne runs in its own goroutine. Panics and errors are converted into a
// failed result so the batch always completes.
func (m *Manager) createOne(ctx context.Context, def domain.EnvironmentDefinition) domain.CreationResult {
	start := time.Now()
	result := domain.CreationResult{Name: def.Name}

	recovered := panics.Try(func() {
		env, err := m.ensure(ctx, def)
		if env != nil {
			result.Address = env.Address()
		}
		result.Err = err
	})
	if recovered != nil {
		result.Err = fmt.Errorf("%w %s: worker crashed: %v", domain.ErrCreationFailed, def.Name, recovered.Value)
	}
	result.Duration = time.Since(start)

	if result.Err != nil {
		m.logger.Debug("environment creation failed", "env", def.Name, "error", result.Err)
	} else {
		m.logger.Debug("environment ready", "env", def.Name, "address", result.Address, "duration", result.Duration)
	}
	m.metrics.ObserveCreation(m.location.Name, def.Name, result.OK(), result.Duration)
	return result
}

// CreateMessage is the confirmation printed after a successful create.
func CreateMessage(names []string) string {
	switch len(names) {
	case 0:
		return "All conda environments created!"
	case 1:
		return fmt.Sprintf("Created environment %s!", names[0])
	default:
		return fmt.Sprintf("Created environments %s!", strings.Join(names, " "))
	}
}

// CreateFailureMessage is printed when any environment of a batch failed.
const CreateFailureMessage = "Failed to create all conda environments!"
