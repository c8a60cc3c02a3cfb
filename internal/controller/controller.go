// Package controller implements the Controller loop from spec.md §4.2: it
// compares per-cgroup counters against configured soft/hard limits,
// consults the policy for a suggested new soft limit, writes the result
// back to cgroupfs, and records the outcome.
package controller

import (
	"context"
	"log"
	"time"

	"github.com/Samarth827/cgroup-governor/internal/journal"
	"github.com/Samarth827/cgroup-governor/internal/model"
	"github.com/Samarth827/cgroup-governor/internal/policy"
)

// Controller runs the controller-side decision loop.
type Controller struct {
	containers []model.ContainerSpec
	states     map[string]*model.ResourceState
	journal    *journal.Journal
	policy     policy.Policy
	interval   time.Duration
	dryRun     bool
}

// New constructs a Controller for the given containers.
func New(containers []model.ContainerSpec, j *journal.Journal, p policy.Policy, interval time.Duration, dryRun bool) *Controller {
	return &Controller{
		containers: containers,
		states:     make(map[string]*model.ResourceState),
		journal:    j,
		policy:     p,
		interval:   interval,
		dryRun:     dryRun,
	}
}

// Run blocks until ctx is cancelled, executing one tick per container then
// sleeping for interval.
func (c *Controller) Run(ctx context.Context) error {
	log.Printf("controller: started (interval=%s, containers=%d, dry_run=%v)", c.interval, len(c.containers), c.dryRun)
	for {
		now := time.Now()
		for _, spec := range c.containers {
			c.tickContainer(now, spec)
		}

		select {
		case <-ctx.Done():
			log.Printf("controller: shutting down")
			return nil
		case <-time.After(c.interval):
		}
	}
}

// tickContainer runs the per-container ordering spec.md §5 requires:
// ensure-base → CPU adjust → memory adjust → I/O adjust → record sample.
func (c *Controller) tickContainer(now time.Time, spec model.ContainerSpec) {
	state, ok := c.states[spec.Name]
	if !ok {
		state = model.NewResourceState()
		c.states[spec.Name] = state
	}

	if err := c.ensureBase(now, spec, state); err != nil {
		log.Printf("controller: %s: ensure base limits: %v", spec.Name, err)
		return
	}

	c.adjustCPU(now, spec, state)
	c.adjustMemory(now, spec, state)
	c.adjustIO(now, spec, state)
	c.recordSample(now, spec, state)
}

func (c *Controller) emit(now time.Time, eventType, message string, data any) {
	rec := model.EventRecord{
		Time:    float64(now.UnixNano()) / 1e9,
		Source:  "controller",
		Type:    eventType,
		Message: message,
		Data:    data,
	}
	if err := c.journal.WriteEvent(rec); err != nil {
		log.Printf("controller: write event: %v", err)
	}
}
