package mission

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mission.yaml")
	write := func(cost string) {
		doc := "root: a\npool: {cpu: 1}\ntasks: [{id: a, kind: leaf, cost: " + cost + "}]\n"
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	}
	write("1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	costs := make(chan float64, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(m *Mission, err error) {
			if err != nil {
				return
			}
			n, _ := m.Tree.Node("a")
			costs <- n.Cost
		})
	}()

	select {
	case c := <-costs:
		assert.Equal(t, 1.0, c)
	case <-time.After(5 * time.Second):
		t.Fatal("initial load not delivered")
	}

	write("2")
	select {
	case c := <-costs:
		assert.Equal(t, 2.0, c)
	case <-time.After(5 * time.Second):
		t.Fatal("change not delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
