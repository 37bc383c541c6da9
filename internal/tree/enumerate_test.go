package tree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskplan/internal/domain"
)

func TestEnumerate(t *testing.T) {
	tr := missionTree(t)
	require.NoError(t, tr.AddChild("ProcessData", "API"))

	got, err := tr.Enumerate("Mission")
	require.NoError(t, err)

	want := []Entry{
		{ID: "Mission", Kind: domain.KindAnd},
		{ID: "AcquireData", Kind: domain.KindOr, ParentID: "Mission"},
		{ID: "Sensor", Kind: domain.KindLeaf, IsLeaf: true, ParentID: "AcquireData"},
		{ID: "API", Kind: domain.KindLeaf, IsLeaf: true, ParentID: "AcquireData"},
		{ID: "ProcessData", Kind: domain.KindAnd, ParentID: "Mission"},
		{ID: "Clean", Kind: domain.KindLeaf, IsLeaf: true, ParentID: "ProcessData"},
		{ID: "Transform", Kind: domain.KindLeaf, IsLeaf: true, ParentID: "ProcessData"},
		{ID: "API", Kind: domain.KindLeaf, IsLeaf: true, ParentID: "ProcessData"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Enumerate() mismatch (-want +got):\n%s", diff)
	}
}

func TestEnumerate_Subtree(t *testing.T) {
	tr := missionTree(t)

	got, err := tr.Enumerate("ProcessData")
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, domain.NodeID(""), got[0].ParentID)
}
