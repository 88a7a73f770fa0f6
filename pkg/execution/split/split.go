package split

import (
	"context"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"twotable/pkg/cursor"
	"twotable/pkg/execution/twotable"
	"twotable/pkg/key"
	"twotable/pkg/logging"
)

// Option configures Run.
type Option func(*options)

type options struct {
	workers int
	env     *cursor.Environment
}

// WithWorkers bounds the number of ranges drained at the same time. Values
// below one mean one.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = max(n, 1)
	}
}

// WithEnvironment sets the environment handed to the forks.
func WithEnvironment(env *cursor.Environment) Option {
	return func(o *options) {
		o.env = env
	}
}

// Result is the output of one range.
type Result struct {
	TaskID  string
	Range   key.Range
	Entries []key.Entry
	Stats   twotable.Stats
}

// Run forks base once per range and drains the forks concurrently. Results
// come back in range order. The first failure cancels the remaining tasks and
// is returned.
func Run(ctx context.Context, base *twotable.Aligner, ranges []key.Range, opts ...Option) ([]Result, error) {
	o := options{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}

	// forks are taken up front so no task touches base concurrently
	forks := make([]*twotable.Aligner, len(ranges))
	for i := range ranges {
		fork, err := base.Fork(o.env)
		if err != nil {
			for _, f := range forks[:i] {
				f.Close()
			}
			return nil, err
		}
		forks[i] = fork
	}

	results := make([]Result, len(ranges))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i, r := range ranges {
		i, r := i, r // per-iteration copies (go directive < 1.22)
		fork := forks[i]
		g.Go(func() error {
			defer fork.Close()

			id := uuid.NewString()
			log := logging.WithTask(id, r.String())
			log.Debug("split task started", "mode", fork.Mode().String())

			if err := gctx.Err(); err != nil {
				return err
			}
			if err := fork.Start(r); err != nil {
				return err
			}

			var out []key.Entry
			for fork.HasTop() {
				if err := gctx.Err(); err != nil {
					return err
				}
				out = append(out, fork.TopEntry())
				if err := fork.Next(); err != nil {
					return err
				}
			}

			results[i] = Result{TaskID: id, Range: r, Entries: out, Stats: fork.Stats()}
			log.Debug("split task finished", "entries", len(out))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logging.WithError(err).Warn("split run failed", "ranges", len(ranges))
		return nil, err
	}
	return results, nil
}

// Merge concatenates the entries of results. For ranges produced by SplitRows
// the concatenation is in key order.
func Merge(results []Result) []key.Entry {
	var n int
	for _, r := range results {
		n += len(r.Entries)
	}
	out := make([]key.Entry, 0, n)
	for _, r := range results {
		out = append(out, r.Entries...)
	}
	return out
}

// SplitRows turns split points into contiguous row ranges covering every key.
// Each split point is the last row of its range, so rows ["m"] yields
// (-inf, m] and (m, +inf). Duplicate points are ignored.
func SplitRows(rows []string) []key.Range {
	points := append([]string(nil), rows...)
	sort.Strings(points)

	var ranges []key.Range
	var prev *key.Key
	for i, row := range points {
		if i > 0 && row == points[i-1] {
			continue
		}
		end := key.RowKey([]byte(row)).FollowingKey(key.Row)
		ranges = append(ranges, key.NewRange(prev, true, &end, false))
		prev = &end
	}
	return append(ranges, key.NewRange(prev, true, nil, false))
}

// Clip intersects every range with bound and drops the ones left empty.
func Clip(ranges []key.Range, bound key.Range) []key.Range {
	var out []key.Range
	for _, r := range ranges {
		if c, ok := r.Clip(bound); ok {
			out = append(out, c)
		}
	}
	return out
}
