package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/resource"
	"github.com/felixgeelhaar/taskplan/internal/tree"
)

func TestEvaluate(t *testing.T) {
	tr := missionTree(t, 0.4)

	ev, err := Evaluate(tr, ids("Sensor", "API"), missionPool())
	require.NoError(t, err)

	assert.Equal(t, resource.Usage{"cpu": 3, "memory": 3072}, ev.Usage)
	assert.Equal(t, 80.0, ev.Cost)
	assert.Equal(t, 0.4, ev.Risk, "risk is the maximum, not the sum")
	assert.Equal(t, ids("Sensor", "API"), ev.Scored)
}

func TestEvaluate_Empty(t *testing.T) {
	ev, err := Evaluate(missionTree(t, 0.4), nil, missionPool())
	require.NoError(t, err)
	assert.Empty(t, ev.Usage)
	assert.Zero(t, ev.Cost)
	assert.Zero(t, ev.Risk)
}

func TestEvaluate_Conflict(t *testing.T) {
	tr := missionTree(t, 0.4)

	_, err := Evaluate(tr, ids("Sensor", "API"), resource.Pool{"cpu": 8, "memory": 3000})

	var conflict *resource.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "memory", conflict.Resource)
	assert.Equal(t, 3072, conflict.Required, "reports the running total that overflowed")
	assert.Equal(t, 3000, conflict.Available)
}

func TestEvaluate_MissingResourceHasZeroCapacity(t *testing.T) {
	_, err := Evaluate(missionTree(t, 0.4), ids("ProcessData"), resource.Pool{"cpu": 8})

	var conflict *resource.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "gpu", conflict.Resource)
	assert.Equal(t, 0, conflict.Available)
}

func TestEvaluate_SkipsSettledNodes(t *testing.T) {
	tr := missionTree(t, 0.4)
	require.NoError(t, tr.SetStatus("Sensor", domain.StatusCompleted))

	ev, err := Evaluate(tr, ids("Sensor", "API"), missionPool())
	require.NoError(t, err)
	assert.Equal(t, 30.0, ev.Cost)
	assert.Equal(t, ids("API"), ev.Scored)
}

func TestEvaluate_UnknownNode(t *testing.T) {
	_, err := Evaluate(tree.New(), ids("ghost"), missionPool())
	var unknown *tree.UnknownNodeError
	assert.ErrorAs(t, err, &unknown)
}

func TestEvaluate_Pure(t *testing.T) {
	tr := missionTree(t, 0.4)
	pool := missionPool()
	option := ids("AcquireData", "ProcessData")

	first, err1 := Evaluate(tr, option, pool)
	second, err2 := Evaluate(tr, option, pool)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
	assert.Equal(t, missionPool(), pool, "pool must not be modified")
}
