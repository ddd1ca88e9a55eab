package morph

// Cache holds the reusable allocations for one tokenizer session: the
// arena of lattice nodes generated for a single call to Tokenize, and
// the DAG shortest-path bookkeeping arrays. Both are cleared (not
// reallocated, where capacity allows) between calls. A Cache is not
// safe for concurrent use; each worker should own one.
type Cache struct {
	nodes []latticeNode
	byEnd [][]int

	bestCost  []int64
	bestPred  []int // index into nodes of the predecessor chosen for this end position, -1 at BOS
	hasCost   []bool
}

// NewCache returns an empty, ready-to-use Cache.
func NewCache() *Cache { return &Cache{} }

// reset grows the cache's arrays to cover a text of byteLen bytes and
// clears their contents, reusing backing storage when possible.
func (c *Cache) reset(byteLen int) {
	c.nodes = c.nodes[:0]

	if cap(c.byEnd) < byteLen+1 {
		c.byEnd = make([][]int, byteLen+1)
	} else {
		c.byEnd = c.byEnd[:byteLen+1]
	}
	for i := range c.byEnd {
		c.byEnd[i] = c.byEnd[i][:0]
	}

	if cap(c.bestCost) < byteLen+1 {
		c.bestCost = make([]int64, byteLen+1)
		c.bestPred = make([]int, byteLen+1)
		c.hasCost = make([]bool, byteLen+1)
	} else {
		c.bestCost = c.bestCost[:byteLen+1]
		c.bestPred = c.bestPred[:byteLen+1]
		c.hasCost = c.hasCost[:byteLen+1]
	}
	for i := range c.hasCost {
		c.hasCost[i] = false
		c.bestPred[i] = -1
	}
}

func (c *Cache) addNode(n latticeNode) int {
	idx := len(c.nodes)
	c.nodes = append(c.nodes, n)
	c.byEnd[n.end] = append(c.byEnd[n.end], idx)
	return idx
}
