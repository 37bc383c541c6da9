package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	a, err := missionTree(t).Fingerprint("Mission")
	require.NoError(t, err)
	b, err := missionTree(t).Fingerprint("Mission")
	require.NoError(t, err)
	assert.Equal(t, a, b, "identical trees hash identically")

	changed := missionTree(t)
	n, _ := changed.Node("API")
	n.Cost = 31
	c, err := changed.Fingerprint("Mission")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	sub, err := missionTree(t).Fingerprint("ProcessData")
	require.NoError(t, err)
	assert.NotEqual(t, a, sub)

	_, err = New().Fingerprint("Mission")
	assert.Error(t, err)
}
