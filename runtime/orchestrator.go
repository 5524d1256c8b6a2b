// Package runtime implements the scheduler that drives asset-partition
// materialization in dependency order.
//
// The DAG walk is single-threaded: the task set and its dependency
// countdowns are computed once, then eligible partitions are dispatched to
// a bounded worker pool. A partition becomes eligible only when every
// mapped upstream partition is terminal; eligibility is tracked with a
// per-task countdown, never by polling. Failure propagates strictly
// forward: a failed partition causes every mapped downstream partition to
// finish skipped, and never touches already-succeeded upstreams.
package runtime

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justapithecus/seam/adapter"
	"github.com/justapithecus/seam/check"
	"github.com/justapithecus/seam/config"
	"github.com/justapithecus/seam/graph"
	"github.com/justapithecus/seam/log"
	"github.com/justapithecus/seam/metrics"
	"github.com/justapithecus/seam/partition"
	"github.com/justapithecus/seam/resource"
	"github.com/justapithecus/seam/store"
	"github.com/justapithecus/seam/types"
)

// DefaultParallel is the default worker pool size.
const DefaultParallel = 4

// OrchestratorConfig wires the orchestrator's collaborators.
type OrchestratorConfig struct {
	// Config is the validated declarative configuration (required).
	Config *config.Config
	// Registry resolves resource names (required when any asset names resources).
	Registry *resource.Registry
	// Store persists run records (required).
	Store store.Store
	// Logger receives structured run logs. Nil disables logging.
	Logger *log.Logger
	// Collector accumulates run metrics. Nil-safe.
	Collector *metrics.Collector
	// Adapter publishes partition completion events. Optional.
	Adapter adapter.Adapter
	// Clock bounds time-partition sequences. Defaults to time.Now.
	Clock partition.Clock
}

// RunOptions scopes and tunes a single scheduler run.
type RunOptions struct {
	// Asset restricts the run to one asset. Empty runs every asset.
	Asset string
	// Key restricts the run to one partition of Asset. Requires Asset.
	Key types.PartitionKey
	// Parallel is the worker pool size (default DefaultParallel).
	Parallel int
	// Force resets already-succeeded keys to pending and rematerializes.
	Force bool
	// Trigger names what initiated the run (e.g. "manual", "cron").
	Trigger string
}

// Orchestrator drives materialization of outstanding asset-partitions.
// Construction is total: config validation, graph building, check
// compilation, and resource resolution all happen in NewOrchestrator, so a
// constructed orchestrator can never hit a load-time error mid-run.
type Orchestrator struct {
	cfg       *config.Config
	space     *partition.Space
	graph     *graph.Graph
	store     store.Store
	logger    *log.Logger
	collector *metrics.Collector
	adapter   adapter.Adapter

	checks    map[string][]check.Check        // per asset, declared order
	resources map[string][]resource.Resource  // per asset, declared order

	keys *keyMutex
}

// NewOrchestrator validates the configuration and compiles it into an
// executable orchestrator. Any validation error (unknown reference, cycle,
// malformed check) fails construction; no partial graph is ever scheduled.
func NewOrchestrator(oc OrchestratorConfig) (*Orchestrator, error) {
	if err := oc.Config.Validate(); err != nil {
		return nil, err
	}

	space, err := partition.NewSpace(oc.Config.Partitions, oc.Clock)
	if err != nil {
		return nil, err
	}

	g, err := graph.Build(oc.Config, space)
	if err != nil {
		return nil, err
	}

	registry := oc.Registry
	if registry == nil {
		registry = resource.NewRegistry()
	}

	checks := make(map[string][]check.Check, len(oc.Config.Assets))
	resources := make(map[string][]resource.Resource, len(oc.Config.Assets))
	for i := range oc.Config.Assets {
		asset := &oc.Config.Assets[i]

		compiled, err := check.CompileAll(asset)
		if err != nil {
			return nil, err
		}
		checks[asset.Name] = compiled

		resolved, err := registry.Resolve(asset.Resources)
		if err != nil {
			return nil, fmt.Errorf("asset %s: %w", asset.Name, err)
		}
		resources[asset.Name] = resolved
	}

	return &Orchestrator{
		cfg:       oc.Config,
		space:     space,
		graph:     g,
		store:     oc.Store,
		logger:    oc.Logger,
		collector: oc.Collector,
		adapter:   oc.Adapter,
		checks:    checks,
		resources: resources,
		keys:      newKeyMutex(),
	}, nil
}

// Graph returns the validated asset DAG.
func (o *Orchestrator) Graph() *graph.Graph {
	return o.graph
}

// Space returns the resolved global partition space.
func (o *Orchestrator) Space() *partition.Space {
	return o.space
}

// Status returns the stored run record for one asset-partition, or nil
// when none exists.
func (o *Orchestrator) Status(ctx context.Context, asset string, key types.PartitionKey) (*types.RunRecord, error) {
	return o.store.Get(ctx, asset, key)
}

// Pending lists all asset-partitions currently in state pending.
func (o *Orchestrator) Pending(ctx context.Context) ([]*types.RunRecord, error) {
	return o.store.ListPending(ctx)
}

// runState is the shared bookkeeping for one scheduler run.
type runState struct {
	mu        sync.Mutex
	remaining int
	queue     chan *task
}

// complete finalizes a task and releases any dependents whose countdown
// reaches zero. Pure bookkeeping: store writes happen in the workers.
func (s *runState) complete(t *task, status taskStatus) {
	s.mu.Lock()
	t.status = status
	s.remaining--
	for _, d := range t.dependents {
		switch status {
		case taskFailed, taskSkipped:
			d.upstreamFailed = true
		case taskBlocked:
			d.upstreamBlocked = true
		}
		d.deps--
		if d.deps == 0 {
			// Queue is buffered to the task count; never blocks.
			s.queue <- d
		}
	}
	done := s.remaining == 0
	s.mu.Unlock()

	if done {
		close(s.queue)
	}
}

// Run materializes all outstanding asset-partitions in the given scope and
// returns the run report. Already-succeeded keys are no-ops unless
// opts.Force is set. Cancellation leaves every non-terminal record in state
// pending so a retry is always possible.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	if opts.Parallel <= 0 {
		opts.Parallel = DefaultParallel
	}

	runID := uuid.New().String()
	started := time.Now().UTC()
	logger := o.runLogger(runID, opts.Trigger)

	tasks, err := o.buildTasks(ctx, opts)
	if err != nil {
		return nil, err
	}

	// Idempotency pre-pass: mark satisfied keys as no-ops, or reset them
	// under force. Every other task gets a fresh pending record so the run
	// is observable before any dispatch.
	for _, t := range tasks {
		rec, err := o.store.Get(ctx, t.node.Name, t.key)
		if err != nil {
			return nil, err
		}
		if rec != nil && rec.State.Satisfied() && !opts.Force {
			t.noop = true
			continue
		}

		pending := &types.RunRecord{
			Asset:       t.node.Name,
			Key:         t.key,
			State:       types.StatePending,
			RunID:       runID,
			ScheduledAt: started,
		}
		if rec != nil {
			pending.Attempt = rec.Attempt
		}
		if err := o.store.Put(ctx, pending); err != nil {
			return nil, err
		}
		o.collector.IncPartitionScheduled()
	}

	logger.Info("run started", map[string]any{
		"assets":   len(o.graph.Nodes()),
		"tasks":    len(tasks),
		"parallel": opts.Parallel,
		"force":    opts.Force,
	})

	state := &runState{
		remaining: len(tasks),
		queue:     make(chan *task, len(tasks)+1),
	}
	for _, t := range tasks {
		if t.deps == 0 {
			state.queue <- t
		}
	}
	if len(tasks) == 0 {
		close(state.queue)
	}

	var wg sync.WaitGroup
	for range opts.Parallel {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range state.queue {
				o.runTask(ctx, state, t, runID, logger)
			}
		}()
	}
	wg.Wait()

	report := buildReport(runID, started, time.Now().UTC(), tasks, o.collector)
	logger.Info("run finished", map[string]any{
		"succeeded": report.Succeeded,
		"warned":    report.Warned,
		"failed":    report.Failed,
		"skipped":   report.Skipped,
		"pending":   report.Pending,
		"exit_code": report.ExitCode(),
	})
	return report, nil
}

// runTask decides and executes one queued task: no-op, skip, block, or
// materialize-and-check.
func (o *Orchestrator) runTask(ctx context.Context, state *runState, t *task, runID string, logger *log.Logger) {
	asset, key := t.node.Name, t.key

	switch {
	case t.noop:
		state.complete(t, taskSatisfied)
		return

	case t.upstreamFailed:
		now := time.Now().UTC()
		rec := &types.RunRecord{
			Asset: asset, Key: key,
			State:       types.StateSkipped,
			RunID:       runID,
			ScheduledAt: now,
			FinishedAt:  &now,
			Error:       "upstream partition failed",
		}
		if err := o.store.Put(ctx, rec); err != nil {
			logger.Error("skip record write failed", map[string]any{"asset": asset, "key": key.String(), "error": err.Error()})
		}
		o.collector.IncPartitionSkipped()
		o.publish(ctx, rec, logger)
		logger.Warn("partition skipped", map[string]any{"asset": asset, "key": key.String()})
		state.complete(t, taskSkipped)
		return

	case t.upstreamBlocked || ctx.Err() != nil:
		// Record stays pending; a later run picks it up.
		state.complete(t, taskBlocked)
		return
	}

	o.keys.Lock(taskID(asset, key))
	defer o.keys.Unlock(taskID(asset, key))

	rec, err := o.store.Get(ctx, asset, key)
	if err != nil || rec == nil {
		logger.Error("record load failed", map[string]any{"asset": asset, "key": key.String()})
		state.complete(t, taskBlocked)
		return
	}

	now := time.Now().UTC()
	rec.State = types.StateRunning
	rec.RunID = runID
	rec.Attempt++
	rec.StartedAt = &now
	if err := o.store.Put(ctx, rec); err != nil {
		state.complete(t, taskBlocked)
		return
	}

	logger.Debug("materializing", map[string]any{"asset": asset, "key": key.String(), "attempt": rec.Attempt})

	handle, err := o.materialize(ctx, asset, key)
	if ctx.Err() != nil {
		// Cancelled mid-flight: revert to pending, never leave running.
		rec.State = types.StatePending
		rec.StartedAt = nil
		if err := o.store.Put(ctx, rec); err != nil {
			logger.Error("pending revert failed", map[string]any{"asset": asset, "key": key.String(), "error": err.Error()})
		}
		state.complete(t, taskBlocked)
		return
	}
	if err != nil {
		o.finishFailed(ctx, state, t, rec, err, logger)
		return
	}

	results := check.Run(o.checks[asset], handle)
	finalState := check.Aggregate(results)

	finished := time.Now().UTC()
	rec.State = finalState
	rec.Checks = results
	rec.FinishedAt = &finished
	if handle != nil {
		rec.Rows = handle.RowCount()
	}
	if err := o.store.Put(ctx, rec); err != nil {
		logger.Error("terminal record write failed", map[string]any{"asset": asset, "key": key.String(), "error": err.Error()})
	}

	o.absorbResults(results)
	o.publish(ctx, rec, logger)

	switch finalState {
	case types.StateFailed:
		o.collector.IncPartitionFailed()
		logger.Warn("partition failed checks", map[string]any{"asset": asset, "key": key.String()})
		state.complete(t, taskFailed)
	case types.StateSucceededWithWarnings:
		o.collector.IncPartitionWarned()
		logger.Info("partition succeeded with warnings", map[string]any{"asset": asset, "key": key.String(), "rows": rec.Rows})
		state.complete(t, taskWarned)
	default:
		o.collector.IncPartitionSucceeded()
		logger.Info("partition succeeded", map[string]any{"asset": asset, "key": key.String(), "rows": rec.Rows})
		state.complete(t, taskSatisfied)
	}
}

// materialize invokes the asset's resource collaborators in declared order.
// Earlier resources fetch or write; the last handle returned describes the
// materialized partition and feeds the check engine.
func (o *Orchestrator) materialize(ctx context.Context, asset string, key types.PartitionKey) (resource.DataHandle, error) {
	var handle resource.DataHandle
	for _, res := range o.resources[asset] {
		h, err := res.Materialize(ctx, asset, key)
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", res.Name(), err)
		}
		if h != nil {
			handle = h
		}
	}
	if handle == nil && len(o.checks[asset]) > 0 {
		return nil, fmt.Errorf("no resource produced a data handle for asset %s", asset)
	}
	return handle, nil
}

// finishFailed records a materialization failure. The cause is persisted on
// the record, never swallowed; retry is an external trigger concern.
func (o *Orchestrator) finishFailed(ctx context.Context, state *runState, t *task, rec *types.RunRecord, cause error, logger *log.Logger) {
	finished := time.Now().UTC()
	rec.State = types.StateFailed
	rec.Error = cause.Error()
	rec.FinishedAt = &finished
	if err := o.store.Put(ctx, rec); err != nil {
		logger.Error("failure record write failed", map[string]any{"asset": rec.Asset, "key": rec.Key.String(), "error": err.Error()})
	}

	o.collector.IncMaterializeError()
	o.collector.IncPartitionFailed()
	o.publish(ctx, rec, logger)
	logger.Error("materialization failed", map[string]any{
		"asset": rec.Asset, "key": rec.Key.String(), "error": cause.Error(),
	})
	state.complete(t, taskFailed)
}

// absorbResults folds one partition's check outcomes into the collector.
func (o *Orchestrator) absorbResults(results []types.CheckResult) {
	var passed, failed, warnings, missing int64
	for _, r := range results {
		if r.Passed {
			passed++
			continue
		}
		failed++
		if r.Severity == types.SeverityWarn {
			warnings++
		}
		if strings.HasPrefix(r.Message, "required column") {
			missing++
		}
	}
	o.collector.AbsorbCheckResults(passed, failed, warnings, missing)
}

// publish sends the terminal record to the configured adapter, if any.
// Publish failures are logged and never affect run state.
func (o *Orchestrator) publish(ctx context.Context, rec *types.RunRecord, logger *log.Logger) {
	if o.adapter == nil {
		return
	}

	var passed, failed int
	for _, c := range rec.Checks {
		if c.Passed {
			passed++
		} else {
			failed++
		}
	}

	event := &adapter.PartitionCompletedEvent{
		EventType:    "partition_completed",
		RunID:        rec.RunID,
		Asset:        rec.Asset,
		PartitionKey: rec.Key.String(),
		State:        string(rec.State),
		Rows:         rec.Rows,
		ChecksPassed: passed,
		ChecksFailed: failed,
		Error:        rec.Error,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := o.adapter.Publish(ctx, event); err != nil {
		logger.Warn("adapter publish failed", map[string]any{"asset": rec.Asset, "error": err.Error()})
	}
}

// runLogger builds the run-scoped logger, falling back to a discard-free
// default when none was configured.
func (o *Orchestrator) runLogger(runID, trigger string) *log.Logger {
	if o.logger != nil {
		return o.logger
	}
	if trigger == "" {
		trigger = "manual"
	}
	return log.NewLogger(&types.RunMeta{RunID: runID, Trigger: trigger, Attempt: 1})
}
