package provisioning

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// phaseFunc adapts a function to the Phase interface for testing.
type phaseFunc struct {
	name string
	fn   func(*Context) error
}

func (p *phaseFunc) Name() string               { return p.name }
func (p *phaseFunc) Provision(c *Context) error { return p.fn(c) }

// nopObserver discards all output.
type nopObserver struct {
	mu       sync.Mutex
	warnings []string
}

func (o *nopObserver) Printf(_ string, _ ...any) {}
func (o *nopObserver) Warnf(format string, v ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.warnings = append(o.warnings, fmt.Sprintf(format, v...))
}
func (o *nopObserver) Progress(_ string, _, _ int) {}

func testContext() *Context {
	return &Context{
		Context:  context.Background(),
		Observer: &nopObserver{},
		State:    NewState(),
	}
}

func TestRunPhases_Order(t *testing.T) {
	t.Parallel()
	executed := make([]string, 0)

	phases := []Phase{
		&phaseFunc{"guard", func(_ *Context) error { executed = append(executed, "guard"); return nil }},
		&phaseFunc{"community", func(_ *Context) error { executed = append(executed, "community"); return nil }},
		&phaseFunc{"group", func(_ *Context) error { executed = append(executed, "group"); return nil }},
	}

	err := RunPhases(testContext(), phases)

	require.NoError(t, err)
	assert.Equal(t, []string{"guard", "community", "group"}, executed)
}

func TestRunPhases_StopsOnError(t *testing.T) {
	t.Parallel()
	executed := make([]string, 0)

	phases := []Phase{
		&phaseFunc{"guard", func(_ *Context) error { executed = append(executed, "guard"); return nil }},
		&phaseFunc{"community", func(_ *Context) error { return fmt.Errorf("backend unavailable") }},
		&phaseFunc{"group", func(_ *Context) error { executed = append(executed, "group"); return nil }},
	}

	err := RunPhases(testContext(), phases)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "community phase failed")
	assert.Contains(t, err.Error(), "backend unavailable")
	assert.Equal(t, []string{"guard"}, executed)
}

func TestRunPhases_Empty(t *testing.T) {
	t.Parallel()
	require.NoError(t, RunPhases(testContext(), nil))
}

func TestRunPhases_AbortErrorSurvivesWrapping(t *testing.T) {
	t.Parallel()
	abort := &AbortError{
		Step:        "guard",
		Reason:      "input was already processed",
		Remediation: []string{"start from a fresh workbook"},
	}

	phases := []Phase{
		&phaseFunc{"guard", func(_ *Context) error { return abort }},
	}

	err := RunPhases(testContext(), phases)

	require.Error(t, err)
	got, ok := AsAbort(err)
	require.True(t, ok)
	assert.Equal(t, "guard", got.Step)
	assert.Equal(t, "input was already processed", got.Reason)
	assert.Equal(t, []string{"start from a fresh workbook"}, got.Remediation)
}

func TestPhases_FixedOrder(t *testing.T) {
	t.Parallel()
	phases := Phases()

	require.Len(t, phases, 5)
	names := make([]string, 0, len(phases))
	for _, p := range phases {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"guard", "community", "group", "caretakers", "admin"}, names)
}
