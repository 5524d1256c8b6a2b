package runtime

import (
	"context"
	"fmt"

	"github.com/justapithecus/seam/graph"
	"github.com/justapithecus/seam/types"
)

// taskStatus is the scheduler-internal lifecycle of one asset-partition task.
type taskStatus int

const (
	// taskWaiting: upstream tasks outstanding.
	taskWaiting taskStatus = iota
	// taskSatisfied: terminal and counts as succeeded for dependents.
	taskSatisfied
	// taskWarned: satisfied, but a warn-severity check failed.
	taskWarned
	// taskFailed: materialization error or error-severity check failure.
	taskFailed
	// taskSkipped: a mapped upstream failed; never dispatched.
	taskSkipped
	// taskBlocked: left pending — an out-of-scope upstream is unsatisfied,
	// or the run was cancelled before dispatch.
	taskBlocked
)

// task is one asset-partition scheduled in the current run.
type task struct {
	node *graph.Node
	key  types.PartitionKey

	// deps is the countdown of in-scope upstream tasks not yet terminal.
	// A task enters the dispatch queue when it reaches zero.
	deps       int
	dependents []*task

	// upstreamFailed is set when any mapped upstream finishes failed or
	// skipped; the task is finalized skipped instead of dispatched.
	upstreamFailed bool
	// upstreamBlocked is set when any mapped upstream is left pending;
	// the task stays pending too.
	upstreamBlocked bool

	// noop marks an already-succeeded key with no force flag: finalized
	// satisfied without dispatch and without touching its record.
	noop bool

	status taskStatus
}

func taskID(asset string, key types.PartitionKey) string {
	return asset + "\x00" + key.String()
}

// buildTasks expands the run scope into the task set: one task per
// asset-partition, wired with dependency countdowns per the partition
// mapping. Upstream partitions outside the scope are resolved against the
// store: satisfied upstreams contribute nothing, failed upstreams mark the
// task for skipping, and unsatisfied upstreams block it.
func (o *Orchestrator) buildTasks(ctx context.Context, opts RunOptions) ([]*task, error) {
	scope := o.graph.TopoOrder()
	if opts.Asset != "" {
		node, ok := o.graph.Node(opts.Asset)
		if !ok {
			return nil, fmt.Errorf("%w: %q", graph.ErrUnknownAsset, opts.Asset)
		}
		scope = []*graph.Node{node}
	}

	byID := make(map[string]*task)
	var tasks []*task

	for _, node := range scope {
		keys, err := o.space.Keyspace(node.Dimensions())
		if err != nil {
			return nil, err
		}

		if opts.Key != nil {
			found := false
			for _, k := range keys {
				if k.Equal(opts.Key) {
					keys = []types.PartitionKey{k}
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("%w: key %q not in keyspace of asset %q",
					graph.ErrUnknownPartition, opts.Key, node.Name)
			}
		}

		for _, key := range keys {
			t := &task{node: node, key: key}
			byID[taskID(node.Name, key)] = t
			tasks = append(tasks, t)
		}
	}

	// Wire dependency countdowns.
	for _, t := range tasks {
		for _, up := range t.node.Upstream {
			upKeys, err := o.space.Keyspace(up.Dimensions())
			if err != nil {
				return nil, err
			}
			for _, upKey := range graph.MapUpstream(t.key, t.node, up, upKeys) {
				if upTask, ok := byID[taskID(up.Name, upKey)]; ok {
					t.deps++
					upTask.dependents = append(upTask.dependents, t)
					continue
				}

				// Out-of-scope upstream: judge it by its stored state.
				rec, err := o.store.Get(ctx, up.Name, upKey)
				if err != nil {
					return nil, err
				}
				switch {
				case rec == nil:
					t.upstreamBlocked = true
				case rec.State.Satisfied():
					// Dependency met; nothing to count.
				case rec.State == types.StateFailed, rec.State == types.StateSkipped:
					t.upstreamFailed = true
				default:
					t.upstreamBlocked = true
				}
			}
		}
	}

	return tasks, nil
}
