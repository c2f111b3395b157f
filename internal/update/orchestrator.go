package update

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/flowsignal/flowcast/schema"
)

// Work is the body of a background refresh job.
type Work func(ctx context.Context) error

// Orchestrator schedules refresh jobs with at-most-one-in-flight semantics
// per key. A trigger for a key with an active job is a silent no-op; an
// accepted trigger upserts Queued synchronously so a status poll right
// after triggering already sees it, then runs the work on its own
// goroutine.
type Orchestrator struct {
	registry *Registry
	ctx      context.Context
	wg       sync.WaitGroup
}

// NewOrchestrator builds an orchestrator writing to the given registry.
// Jobs run under ctx; the orchestrator imposes no timeout of its own, a
// hung job leaves its key InProgress until the context dies.
func NewOrchestrator(ctx context.Context, registry *Registry) *Orchestrator {
	return &Orchestrator{registry: registry, ctx: ctx}
}

// Trigger accepts the job unless the key already has an active one.
// Returns whether the job was accepted. Failures of the work body are
// recorded as Failed and logged, never propagated.
func (o *Orchestrator) Trigger(key schema.UpdateKey, work Work) bool {
	if !o.registry.TryAcquire(key) {
		return false
	}
	o.wg.Add(1)
	go o.run(key, work)
	return true
}

// Wait blocks until all accepted jobs have reached a terminal state.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) run(key schema.UpdateKey, work Work) {
	defer o.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			o.registry.Set(schema.UpdateStatus{UpdateType: key.UpdateType, ID: key.ID, Status: schema.UpdateFailed})
			log.Error().Stringer("key", key).Str("panic", fmt.Sprint(r)).Msg("update job panicked")
		}
	}()

	o.registry.Set(schema.UpdateStatus{UpdateType: key.UpdateType, ID: key.ID, Status: schema.UpdateInProgress})

	if err := work(o.ctx); err != nil {
		o.registry.Set(schema.UpdateStatus{UpdateType: key.UpdateType, ID: key.ID, Status: schema.UpdateFailed})
		log.Warn().Stringer("key", key).Err(err).Msg("update job failed")
		return
	}
	o.registry.Set(schema.UpdateStatus{UpdateType: key.UpdateType, ID: key.ID, Status: schema.UpdateCompleted})
	log.Debug().Stringer("key", key).Msg("update job completed")
}
