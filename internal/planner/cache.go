package planner

import (
	"encoding/binary"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/resource"
	"github.com/felixgeelhaar/taskplan/internal/tree"
)

type cacheKey [32]byte

// resultCache keeps successful results keyed by everything that determines them
type resultCache struct {
	entries *lru.Cache[cacheKey, *Result]
}

func newResultCache(size int) (*resultCache, error) {
	if size == 0 {
		return nil, nil
	}
	entries, err := lru.New[cacheKey, *Result](size)
	if err != nil {
		return nil, err
	}
	return &resultCache{entries: entries}, nil
}

// key combines the subtree fingerprint with the pool and the settings that
// change which plan is selected. Budgets are left out: they only decide
// whether a run finishes.
func (c *resultCache) key(t *tree.Tree, root domain.NodeID, pool resource.Pool, cfg Config) (cacheKey, error) {
	fp, err := t.Fingerprint(root)
	if err != nil {
		return cacheKey{}, err
	}

	h := blake3.New()
	_, _ = h.Write(fp[:])
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(root)))
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(root))
	for _, name := range pool.Names() {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(name)))
		_, _ = h.Write(buf[:])
		_, _ = h.Write([]byte(name))
		binary.LittleEndian.PutUint64(buf[:], uint64(pool[name]))
		_, _ = h.Write(buf[:])
	}
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(cfg.RiskCeiling))
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(cfg.Accounting))
	_, _ = h.Write(buf[:])

	var k cacheKey
	copy(k[:], h.Sum(nil))
	return k, nil
}

func (c *resultCache) get(k cacheKey) (*Result, bool) {
	r, ok := c.entries.Get(k)
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

func (c *resultCache) put(k cacheKey, r *Result) {
	c.entries.Add(k, r.Clone())
}

func (c *resultCache) len() int {
	return c.entries.Len()
}
