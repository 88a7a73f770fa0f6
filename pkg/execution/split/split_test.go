package split

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twotable/pkg/cursor"
	dberror "twotable/pkg/error"
	"twotable/pkg/execution/twotable"
	"twotable/pkg/key"
)

func cell(row, qual, val string) key.Entry {
	return key.Entry{Key: key.NewKey(row, "f", qual, 1), Value: key.Value(val)}
}

func fixture() ([]key.Entry, []key.Entry) {
	var a, b []key.Entry
	for i := 0; i < 20; i++ {
		row := fmt.Sprintf("r%02d", i)
		a = append(a, cell(row, "x", fmt.Sprint(i)), cell(row, "y", "2"))
		if i%3 != 0 {
			b = append(b, cell(row, "x", "3"), cell(row, "z", "5"))
		}
	}
	return a, b
}

func newBase(t *testing.T, opts map[string]string, a, b []key.Entry) *twotable.Aligner {
	t.Helper()
	cat := cursor.NewCatalog()
	require.NoError(t, cat.Register(cursor.NewTable("a", a)))
	require.NoError(t, cat.Register(cursor.NewTable("b", b)))

	all := map[string]string{"A.tableName": "a", "B.tableName": "b"}
	for k, v := range opts {
		all[k] = v
	}
	al, err := twotable.Open(all, cursor.NewEnvironment(cat), nil)
	require.NoError(t, err)
	return al
}

func sequential(t *testing.T, al *twotable.Aligner) []key.Entry {
	t.Helper()
	fork, err := al.Fork(nil)
	require.NoError(t, err)
	require.NoError(t, fork.Start(key.InfiniteRange()))

	var out []key.Entry
	for fork.HasTop() {
		out = append(out, fork.TopEntry())
		require.NoError(t, fork.Next())
	}
	return out
}

func TestSplitRows(t *testing.T) {
	ranges := SplitRows([]string{"m", "c", "m"})
	require.Len(t, ranges, 3)

	assert.Nil(t, ranges[0].Start)
	assert.True(t, ranges[0].Contains(key.NewKey("c", "f", "q", 1)))
	assert.False(t, ranges[0].Contains(key.NewKey("d", "f", "q", 1)))
	assert.True(t, ranges[1].Contains(key.NewKey("d", "f", "q", 1)))
	assert.True(t, ranges[1].Contains(key.NewKey("m", "zz", "zz", 0)))
	assert.True(t, ranges[2].Contains(key.NewKey("ma", "", "", 0)))
	assert.Nil(t, ranges[2].End)

	assert.Len(t, SplitRows(nil), 1)
}

func TestClipDropsEmptyRanges(t *testing.T) {
	ranges := Clip(SplitRows([]string{"c", "m"}), key.RowRange("d", "f"))
	require.Len(t, ranges, 1)
	assert.True(t, ranges[0].Contains(key.NewKey("e", "", "", 0)))
	assert.False(t, ranges[0].Contains(key.NewKey("c", "", "", 0)))
}

func TestRunMatchesSequentialDrain(t *testing.T) {
	a, b := fixture()
	configs := []map[string]string{
		{"mode": "EWISE", "A.emitNoMatch": "true"},
		{"mode": "ROW"},
		{"mode": "NONE", "A.emitNoMatch": "true", "B.emitNoMatch": "true"},
	}
	for _, opts := range configs {
		for _, workers := range []int{1, 4} {
			t.Run(fmt.Sprintf("%s/workers=%d", opts["mode"], workers), func(t *testing.T) {
				base := newBase(t, opts, a, b)
				want := sequential(t, base)

				results, err := Run(context.Background(), base, SplitRows([]string{"r04", "r09", "r15"}), WithWorkers(workers))
				require.NoError(t, err)
				require.Len(t, results, 4)

				ids := make(map[string]struct{})
				for _, r := range results {
					assert.NotEmpty(t, r.TaskID)
					ids[r.TaskID] = struct{}{}
				}
				assert.Len(t, ids, 4)

				assert.Equal(t, want, Merge(results))
			})
		}
	}
}

func TestRunLeavesBaseUntouched(t *testing.T) {
	a, b := fixture()
	base := newBase(t, map[string]string{"mode": "EWISE"}, a, b)
	require.NoError(t, base.Start(key.InfiniteRange()))
	first := base.TopEntry()

	_, err := Run(context.Background(), base, SplitRows([]string{"r10"}))
	require.NoError(t, err)

	require.True(t, base.HasTop())
	assert.Equal(t, first, base.TopEntry())
}

func TestRunPropagatesFailure(t *testing.T) {
	a, b := fixture()
	b = append(b, cell("r17", "y", "not-a-number"))
	base := newBase(t, map[string]string{"mode": "EWISE"}, a, b)

	_, err := Run(context.Background(), base, SplitRows([]string{"r04", "r09", "r15"}), WithWorkers(2))
	require.Error(t, err)
	assert.True(t, errors.Is(err, dberror.ErrStrategyFailure))
}

func TestRunHonorsCancellation(t *testing.T) {
	a, b := fixture()
	base := newBase(t, map[string]string{"mode": "EWISE"}, a, b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, base, SplitRows([]string{"r10"}))
	assert.ErrorIs(t, err, context.Canceled)
}

// trackedCursor records deep copies and closes and fails every copy past
// limit. Copies share the counters of the cursor they came from.
type trackedCursor struct {
	cursor.SortedCursor
	t *tracker
}

type tracker struct {
	mu     sync.Mutex
	limit  int
	copies int
	closed int
	envs   []*cursor.Environment
}

func (c *trackedCursor) DeepCopy(env *cursor.Environment) (cursor.SortedCursor, error) {
	c.t.mu.Lock()
	defer c.t.mu.Unlock()
	if c.t.copies >= c.t.limit {
		return nil, errors.New("copy refused")
	}
	inner, err := c.SortedCursor.DeepCopy(env)
	if err != nil {
		return nil, err
	}
	c.t.copies++
	c.t.envs = append(c.t.envs, env)
	return &trackedCursor{SortedCursor: inner, t: c.t}, nil
}

func (c *trackedCursor) Close() error {
	c.t.mu.Lock()
	defer c.t.mu.Unlock()
	c.t.closed++
	return nil
}

func trackedBase(t *testing.T, limit int) (*twotable.Aligner, *tracker) {
	t.Helper()
	a, b := fixture()
	tr := &tracker{limit: limit}
	cfg, err := twotable.ParseOptions(map[string]string{"mode": "EWISE"})
	require.NoError(t, err)

	left := &trackedCursor{SortedCursor: cursor.NewMemoryCursor(cursor.NewTable("a", a)), t: tr}
	right := &trackedCursor{SortedCursor: cursor.NewMemoryCursor(cursor.NewTable("b", b)), t: tr}
	base, err := twotable.New(left, right, cfg, nil, nil)
	require.NoError(t, err)
	return base, tr
}

func TestRunHandsEnvironmentToForks(t *testing.T) {
	base, tr := trackedBase(t, 100)
	env := cursor.NewEnvironment(cursor.NewCatalog())

	results, err := Run(context.Background(), base, SplitRows([]string{"r09"}), WithEnvironment(env))
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.Len(t, tr.envs, 4)
	for _, got := range tr.envs {
		assert.Same(t, env, got)
	}
	assert.Equal(t, 4, tr.closed, "every fork is closed after its range drains")
}

func TestRunClosesForksWhenForkingFails(t *testing.T) {
	// three copies succeed: both sides of the first fork and side A of the second
	base, tr := trackedBase(t, 3)

	_, err := Run(context.Background(), base, SplitRows([]string{"r04", "r09", "r15"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, dberror.ErrIOFailure)
	assert.Equal(t, 3, tr.copies)
	assert.Equal(t, 3, tr.closed)
}
