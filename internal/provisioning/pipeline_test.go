package provisioning

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// phaseFunc creates a Phase from a function for testing.
type phaseFuncImpl struct {
	name string
	fn   func(*Context) error
}

func phaseFunc(name string, fn func(*Context) error) Phase {
	return &phaseFuncImpl{name: name, fn: fn}
}

func (p *phaseFuncImpl) Name() string                 { return p.name }
func (p *phaseFuncImpl) Provision(ctx *Context) error { return p.fn(ctx) }

// reverserFunc creates a Reverser whose Teardown runs the given function.
type reverserFuncImpl struct {
	phaseFuncImpl
	down func(*Context) error
}

func reverserFunc(name string, down func(*Context) error) Phase {
	return &reverserFuncImpl{
		phaseFuncImpl: phaseFuncImpl{name: name, fn: func(*Context) error { return nil }},
		down:          down,
	}
}

func (r *reverserFuncImpl) Teardown(ctx *Context) error { return r.down(ctx) }

func testContext(observer Observer) *Context {
	return &Context{
		Observer: observer,
		State:    NewState(),
	}
}

func TestRunPhases_Success(t *testing.T) {
	t.Parallel()
	executed := make([]string, 0)

	ctx := testContext(NewMockObserver())

	err := RunPhases(ctx, []Phase{
		phaseFunc("network", func(_ *Context) error { executed = append(executed, "network"); return nil }),
		phaseFunc("registry", func(_ *Context) error { executed = append(executed, "registry"); return nil }),
		phaseFunc("cluster", func(_ *Context) error { executed = append(executed, "cluster"); return nil }),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"network", "registry", "cluster"}, executed)
}

func TestRunPhases_StopsOnError(t *testing.T) {
	t.Parallel()
	executed := make([]string, 0)

	ctx := testContext(NewMockObserver())

	err := RunPhases(ctx, []Phase{
		phaseFunc("network", func(_ *Context) error { executed = append(executed, "network"); return nil }),
		phaseFunc("cluster", func(_ *Context) error { return fmt.Errorf("out of capacity") }),
		phaseFunc("compute", func(_ *Context) error { executed = append(executed, "compute"); return nil }),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster phase failed")
	assert.Contains(t, err.Error(), "out of capacity")
	// compute should NOT have executed
	assert.Equal(t, []string{"network"}, executed)
}

func TestRunPhases_Empty(t *testing.T) {
	t.Parallel()
	ctx := testContext(NewMockObserver())

	require.NoError(t, RunPhases(ctx, nil))
}

func TestRunTeardown_ReversesEveryPhase(t *testing.T) {
	t.Parallel()
	executed := make([]string, 0)

	ctx := testContext(NewMockObserver())

	err := RunTeardown(ctx, []Phase{
		reverserFunc("compute", func(_ *Context) error { executed = append(executed, "compute"); return nil }),
		reverserFunc("cluster", func(_ *Context) error { executed = append(executed, "cluster"); return nil }),
		reverserFunc("network", func(_ *Context) error { executed = append(executed, "network"); return nil }),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"compute", "cluster", "network"}, executed)
}

func TestRunTeardown_ContinuesPastFailures(t *testing.T) {
	t.Parallel()
	executed := make([]string, 0)

	ctx := testContext(NewMockObserver())

	err := RunTeardown(ctx, []Phase{
		reverserFunc("compute", func(_ *Context) error { executed = append(executed, "compute"); return nil }),
		reverserFunc("cluster", func(_ *Context) error { return fmt.Errorf("still draining") }),
		reverserFunc("network", func(_ *Context) error { executed = append(executed, "network"); return nil }),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster teardown failed")
	assert.Contains(t, err.Error(), "still draining")
	// network still ran despite the cluster failure
	assert.Equal(t, []string{"compute", "network"}, executed)
}

func TestRunTeardown_AggregatesAllFailures(t *testing.T) {
	t.Parallel()
	ctx := testContext(NewMockObserver())

	err := RunTeardown(ctx, []Phase{
		reverserFunc("compute", func(_ *Context) error { return fmt.Errorf("nodes stuck") }),
		reverserFunc("network", func(_ *Context) error { return fmt.Errorf("dependency violation") }),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "compute teardown failed")
	assert.Contains(t, err.Error(), "network teardown failed")
}

func TestRunTeardown_SkipsPhasesWithoutTeardown(t *testing.T) {
	t.Parallel()
	observer := NewMockObserver()
	ctx := testContext(observer)

	executed := false
	err := RunTeardown(ctx, []Phase{
		phaseFunc("gitops", func(_ *Context) error { return nil }),
		reverserFunc("network", func(_ *Context) error { executed = true; return nil }),
	})

	require.NoError(t, err)
	assert.True(t, executed)

	skipped := observer.eventsOfType(EventPhaseSkipped)
	require.Len(t, skipped, 1)
	assert.Equal(t, "gitops", skipped[0].Phase)
}
