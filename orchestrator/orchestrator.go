package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Thirumurugan7/Web3-Lottery-app/config"
)

var (
	ErrMissingDependency = errors.New("missing dependency")
	ErrNoStages          = errors.New("no stages selected")
)

// Orchestrator runs stages strictly in registration order.
type Orchestrator struct {
	stages []Stage
	mu     sync.RWMutex
}

func New(stages ...Stage) *Orchestrator {
	o := &Orchestrator{}
	for _, s := range stages {
		o.Register(s)
	}
	return o
}

func (o *Orchestrator) Register(s Stage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stages = append(o.stages, s)
}

// Select returns the stages carrying any of tags, in order. No tags selects
// every stage.
func (o *Orchestrator) Select(tags ...string) []Stage {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if len(tags) == 0 {
		return append([]Stage(nil), o.stages...)
	}

	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[strings.ToLower(strings.TrimSpace(t))] = true
	}

	var selected []Stage
	for _, s := range o.stages {
		for _, t := range s.Tags() {
			if want[strings.ToLower(t)] {
				selected = append(selected, s)
				break
			}
		}
	}
	return selected
}

// Plan selects stages and checks, before anything is sent, that every key a
// stage consumes is produced by an earlier stage or is already registered.
func (o *Orchestrator) Plan(net config.Network, registry *Registry, tags ...string) ([]Stage, error) {
	selected := o.Select(tags...)
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: tags %v", ErrNoStages, tags)
	}

	available := make(map[string]bool)
	for _, s := range selected {
		for _, key := range s.Consumes(net) {
			if !available[key] && !registry.Has(key) {
				return nil, fmt.Errorf("%w: %w: stage %s consumes %s, which no earlier stage produces on %s",
					ErrMissingDependency, ErrContractNotFound, s.Name(), key, net.Name)
			}
		}
		for _, key := range s.Produces(net) {
			available[key] = true
		}
	}
	return selected, nil
}

// Run executes the selected stages one after another and stops at the first
// error. Stages are never retried.
func (o *Orchestrator) Run(ctx context.Context, rt *Runtime, tags ...string) ([]StageResult, error) {
	stages, err := o.Plan(rt.Network, rt.Registry, tags...)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name()
	}
	rt.Logger.Info().
		Str("network", rt.Network.Name).
		Uint64("chain_id", rt.Network.ChainID).
		Strs("stages", names).
		Msg("deployment plan")

	results := make([]StageResult, 0, len(stages))
	for _, s := range stages {
		for _, key := range s.Consumes(rt.Network) {
			if !rt.Registry.Has(key) {
				return results, fmt.Errorf("%w: %w: stage %s needs %s", ErrMissingDependency, ErrContractNotFound, s.Name(), key)
			}
		}

		start := time.Now()
		rt.Logger.Debug().Str("stage", s.Name()).Msg("stage started")

		if err := s.Run(ctx, rt); err != nil {
			return results, fmt.Errorf("stage %s failed: %w", s.Name(), err)
		}

		produced := s.Produces(rt.Network)
		for _, key := range produced {
			if !rt.Registry.Has(key) {
				return results, fmt.Errorf("%w: stage %s did not record %s", ErrMissingDependency, s.Name(), key)
			}
		}

		result := StageResult{Stage: s.Name(), Produced: produced, Duration: time.Since(start)}
		results = append(results, result)
		rt.Logger.Debug().
			Str("stage", s.Name()).
			Dur("duration", result.Duration).
			Msg("stage finished")
	}

	return results, nil
}
