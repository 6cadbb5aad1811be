package hnsw

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/annindex/column"
	"github.com/hupe1980/annindex/distance"
	"github.com/hupe1980/annindex/internal/queue"
	"github.com/hupe1980/annindex/internal/visited"
)

const (
	// minimumM is the smallest valid value for M. M == 1 would make the
	// layer multiplier 1/ln(1) divide by zero.
	minimumM = 2

	// DefaultM is the default number of bidirectional links per node.
	DefaultM = 16

	// DefaultEFConstruction is the default candidate-list width during
	// insertion.
	DefaultEFConstruction = 200
)

// Options represents the construction parameters of the graph. All fields
// are immutable after New.
type Options struct {
	// M is the target number of bidirectional links per node on layers
	// above 0. Reasonable values are 8-48; higher M suits datasets with
	// high intrinsic dimensionality.
	M int

	// MMax0 caps the degree at layer 0. Defaults to 2*M.
	MMax0 int

	// EFConstruction is the candidate-list width used while inserting.
	// Larger values improve graph quality at the cost of build time.
	EFConstruction int

	// ML is the layer-selection decay factor. Defaults to 1/ln(M).
	ML float64

	// Metric selects the distance metric.
	Metric distance.Metric

	// RandomSeed seeds the layer-selection generator. When nil the
	// generator is seeded from the wall clock; tests inject a fixed seed
	// for reproducible graphs.
	RandomSeed *int64
}

// DefaultOptions contains the default options for the graph.
var DefaultOptions = Options{
	M:              DefaultM,
	EFConstruction: DefaultEFConstruction,
	Metric:         distance.MetricL2,
}

// Result is a single search hit.
type Result struct {
	ID       uint32
	Distance float32
}

// Index is the Hierarchical Navigable Small World graph. It stores vectors
// in a column.Column and maintains the multilayer adjacency over them.
type Index struct {
	col      *column.Column
	metric   distance.Metric
	distFunc distance.Func

	m              int
	mMax0          int
	efConstruction int
	ml             float64

	// mu serializes writers. rng is only touched under mu.
	mu  sync.Mutex
	rng *rand.Rand

	// Dense node table indexed by id, grown copy-on-write so readers can
	// keep traversing a consistent snapshot.
	nodes atomic.Pointer[[]atomic.Pointer[node]]

	count      atomic.Int64
	entryPoint atomic.Uint32
	maxLevel   atomic.Int32 // -1 while the index is empty

	pool sync.Pool // *traversal
}

// traversal bundles the scratch state of one graph walk.
type traversal struct {
	visited    *visited.Set
	candidates *queue.Queue // min-heap: next node to expand
	results    *queue.Queue // max-heap bounded by ef: current best
	scratch    []queue.Item
	selected   []queue.Item
}

// New creates an index over the given column. The column supplies the
// dimensionality and owns the vector memory; the index owns the graph.
func New(col *column.Column, optFns ...func(o *Options)) (*Index, error) {
	if col == nil {
		return nil, fmt.Errorf("hnsw: nil column")
	}

	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.M < minimumM {
		opts.M = minimumM
	}
	if opts.MMax0 <= 0 {
		opts.MMax0 = 2 * opts.M
	}
	if opts.EFConstruction < 1 {
		opts.EFConstruction = DefaultEFConstruction
	}
	if opts.ML <= 0 {
		opts.ML = 1 / math.Log(float64(opts.M))
	}

	distFunc, err := distance.Provider(opts.Metric)
	if err != nil {
		return nil, err
	}

	var seed int64
	if opts.RandomSeed != nil {
		seed = *opts.RandomSeed
	} else {
		seed = time.Now().UnixNano()
	}

	idx := &Index{
		col:            col,
		metric:         opts.Metric,
		distFunc:       distFunc,
		m:              opts.M,
		mMax0:          opts.MMax0,
		efConstruction: opts.EFConstruction,
		ml:             opts.ML,
		rng:            rand.New(rand.NewSource(seed)),
	}
	idx.maxLevel.Store(-1)

	nodes := make([]atomic.Pointer[node], 1024)
	idx.nodes.Store(&nodes)

	idx.pool.New = func() any {
		return &traversal{
			visited:    visited.New(1024),
			candidates: queue.NewMin(opts.EFConstruction),
			results:    queue.NewMax(opts.EFConstruction),
			scratch:    make([]queue.Item, 0, opts.EFConstruction),
			selected:   make([]queue.Item, 0, opts.MMax0),
		}
	}

	return idx, nil
}

// Dimension returns the vector dimensionality of the index.
func (i *Index) Dimension() int { return i.col.Dimension() }

// Metric returns the configured distance metric.
func (i *Index) Metric() distance.Metric { return i.metric }

// Count returns the number of inserted nodes.
func (i *Index) Count() int { return int(i.count.Load()) }

// Column returns the backing vector column.
func (i *Index) Column() *column.Column { return i.col }

// Contains reports whether id has been inserted.
func (i *Index) Contains(id uint32) bool { return i.getNode(id) != nil }

// Insert adds a vector under the given id and links it into every layer
// from 0 up to its randomly drawn maximum layer. Ids are expected to be
// dense and monotonically assigned by the caller; the node table is indexed
// by id directly.
//
// Validation happens before any mutation: a dimension mismatch or duplicate
// id leaves both the column and the graph untouched.
func (i *Index) Insert(id uint32, v []float32) error {
	if len(v) != i.col.Dimension() {
		return &column.ErrDimensionMismatch{Expected: i.col.Dimension(), Actual: len(v)}
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.getNode(id) != nil {
		return &ErrDuplicateID{ID: id}
	}

	vec := v
	if i.metric == distance.MetricCosine {
		normalized, ok := distance.NormalizeL2Copy(v)
		if !ok {
			return ErrZeroVector
		}
		vec = normalized
	}

	if err := i.col.Set(int(id), vec); err != nil {
		return err
	}
	// Re-read the stored view so the graph and later reads share memory.
	stored, _ := i.col.Get(int(id))

	level := i.randomLevel()
	n := newNode(id, level)

	// First node: publish and make it the entry point, no linking needed.
	if i.count.Load() == 0 {
		i.setNode(id, n)
		i.entryPoint.Store(id)
		i.maxLevel.Store(int32(level))
		i.count.Store(1)
		return nil
	}

	i.link(n, stored, level)

	i.count.Add(1)
	if level > int(i.maxLevel.Load()) {
		i.entryPoint.Store(id)
		i.maxLevel.Store(int32(level))
	}
	return nil
}

// link wires the new node into the graph: greedy descent through the layers
// above its level, then per-layer candidate search, neighbor selection and
// bidirectional linking with immediate degree-bound restoration.
func (i *Index) link(n *node, vec []float32, level int) {
	maxLevel := int(i.maxLevel.Load())

	curr := i.entryPoint.Load()
	currDist := i.distToRow(vec, curr)

	// Phase 1: single-result greedy descent through layers above the new
	// node's level.
	curr, currDist = i.greedyDescend(vec, curr, currDist, maxLevel, level)

	tr := i.acquireTraversal()
	defer i.releaseTraversal(tr)

	// Phase 2: from min(level, maxLevel) down to 0, gather candidates and
	// select the new node's neighbors per layer. The selections are kept so
	// the back-edges can be added after the node is published.
	top := min(level, maxLevel)
	perLayer := make([][]queue.Item, top+1)

	for l := top; l >= 0; l-- {
		i.searchLayer(tr, vec, curr, currDist, l, i.efConstruction, nil)

		if best, ok := tr.results.Min(); ok {
			curr, currDist = best.ID, best.Dist
		}

		selected := i.selectNeighbors(tr, i.layerCap(l))
		ids := make([]uint32, len(selected))
		for j, it := range selected {
			ids[j] = it.ID
		}
		n.replaceNeighbors(l, ids)

		perLayer[l] = append([]queue.Item(nil), selected...)
	}

	// Publish the node, then make it reachable through its neighbors.
	i.setNode(n.id, n)

	for l := top; l >= 0; l-- {
		for _, nb := range perLayer[l] {
			i.addEdge(tr, nb.ID, n.id, l, nb.Dist)
		}
	}
}

// addEdge appends newID to src's adjacency at layer l, re-running the
// selection heuristic when the degree cap is exceeded so the bound is
// restored immediately.
func (i *Index) addEdge(tr *traversal, src, newID uint32, l int, dist float32) {
	n := i.getNode(src)
	if n == nil {
		return
	}

	conns := n.neighbors(l)
	for _, c := range conns {
		if c == newID {
			return
		}
	}

	limit := i.layerCap(l)
	if len(conns) < limit {
		next := make([]uint32, len(conns)+1)
		copy(next, conns)
		next[len(conns)] = newID
		n.replaceNeighbors(l, next)
		return
	}

	// Overflow: rebuild the candidate set from the existing neighbors plus
	// the new edge, ranked by distance to src, and keep the best limit.
	srcVec, ok := i.col.Get(int(src))
	if !ok {
		return
	}

	tr.scratch = tr.scratch[:0]
	for _, c := range conns {
		cVec, ok := i.col.Get(int(c))
		if !ok {
			continue
		}
		tr.scratch = append(tr.scratch, queue.Item{ID: c, Dist: i.distFunc(srcVec, cVec)})
	}
	tr.scratch = append(tr.scratch, queue.Item{ID: newID, Dist: dist})
	sortItems(tr.scratch)

	selected := i.selectFromSorted(tr, tr.scratch, limit)
	ids := make([]uint32, len(selected))
	for j, it := range selected {
		ids[j] = it.ID
	}
	n.replaceNeighbors(l, ids)
}

// layerCap returns the degree cap for layer l.
func (i *Index) layerCap(l int) int {
	if l == 0 {
		return i.mMax0
	}
	return i.m
}

// randomLevel draws the maximum layer for a new node. The exponential decay
// gives each layer roughly 1/e^(1/ML) the population of the one below it,
// which is what keeps search depth logarithmic.
func (i *Index) randomLevel() int {
	u := i.rng.Float64()
	for u == 0 {
		u = i.rng.Float64()
	}
	return int(math.Floor(-math.Log(u) * i.ml))
}

// distToRow computes the distance from vec to the stored vector at row id.
func (i *Index) distToRow(vec []float32, id uint32) float32 {
	row, ok := i.col.Get(int(id))
	if !ok {
		return math.MaxFloat32
	}
	return i.distFunc(vec, row)
}

func (i *Index) getNode(id uint32) *node {
	nodes := *i.nodes.Load()
	if int(id) >= len(nodes) {
		return nil
	}
	return nodes[id].Load()
}

// setNode publishes n under its id, growing the node table if needed.
// Only the serialized writer calls this.
func (i *Index) setNode(id uint32, n *node) {
	i.growNodes(int(id) + 1)
	nodes := *i.nodes.Load()
	nodes[id].Store(n)
}

func (i *Index) growNodes(size int) {
	old := *i.nodes.Load()
	if size <= len(old) {
		return
	}

	capacity := 2 * len(old)
	if capacity < size {
		capacity = size
	}

	next := make([]atomic.Pointer[node], capacity)
	for j := range old {
		next[j].Store(old[j].Load())
	}
	i.nodes.Store(&next)
}

func (i *Index) acquireTraversal() *traversal {
	return i.pool.Get().(*traversal)
}

func (i *Index) releaseTraversal(tr *traversal) {
	tr.visited.Reset()
	tr.candidates.Reset()
	tr.results.Reset()
	i.pool.Put(tr)
}
