package hnsw

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/annindex/column"
	"github.com/hupe1980/annindex/distance"
	"github.com/hupe1980/annindex/internal/queue"
)

// Search returns the k nearest neighbors of query, ordered by ascending
// distance with ties broken by ascending id. ef bounds the candidate list
// at layer 0 and must be at least k; larger values trade latency for
// recall.
//
// Search is safe for concurrent use and never blocks Insert.
func (i *Index) Search(query []float32, k, ef int) ([]Result, error) {
	return i.search(query, k, ef, nil)
}

// SearchWithFilter behaves like Search but only returns ids contained in
// the allow set. The graph is still traversed through filtered-out nodes so
// sparse filters do not disconnect the walk.
func (i *Index) SearchWithFilter(query []float32, k, ef int, allow *roaring.Bitmap) ([]Result, error) {
	if allow == nil {
		return i.search(query, k, ef, nil)
	}
	return i.search(query, k, ef, func(id uint32) bool { return allow.Contains(id) })
}

func (i *Index) search(query []float32, k, ef int, allow func(id uint32) bool) ([]Result, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if ef < k {
		return nil, ErrInvalidEF
	}
	if len(query) != i.col.Dimension() {
		return nil, &column.ErrDimensionMismatch{Expected: i.col.Dimension(), Actual: len(query)}
	}
	if i.count.Load() == 0 {
		return nil, ErrEmptyIndex
	}

	q := query
	if i.metric == distance.MetricCosine {
		normalized, ok := distance.NormalizeL2Copy(query)
		if !ok {
			return nil, ErrZeroVector
		}
		q = normalized
	}

	maxLevel := int(i.maxLevel.Load())
	curr := i.entryPoint.Load()
	currDist := i.distToRow(q, curr)

	curr, currDist = i.greedyDescend(q, curr, currDist, maxLevel, 0)

	tr := i.acquireTraversal()
	defer i.releaseTraversal(tr)

	i.searchLayer(tr, q, curr, currDist, 0, ef, allow)

	return drainTopK(tr.results, k), nil
}

// greedyDescend walks a single closest node per layer from layer `from`
// down to (but not into) layer `downTo`.
func (i *Index) greedyDescend(vec []float32, curr uint32, currDist float32, from, downTo int) (uint32, float32) {
	for l := from; l > downTo; l-- {
		for {
			improved := false

			n := i.getNode(curr)
			if n == nil {
				break
			}
			for _, nb := range n.neighbors(l) {
				d := i.distToRow(vec, nb)
				if d < currDist {
					curr, currDist = nb, d
					improved = true
				}
			}
			if !improved {
				break
			}
		}
	}
	return curr, currDist
}

// searchLayer runs the bounded best-first search at layer l starting from
// entry. The result set is left in tr.results as a max-heap capped at ef.
// When allow is non-nil, filtered-out nodes are expanded but never enter
// the result set.
func (i *Index) searchLayer(tr *traversal, vec []float32, entry uint32, entryDist float32, l, ef int, allow func(id uint32) bool) {
	tr.visited.Reset()
	tr.candidates.Reset()
	tr.results.Reset()

	tr.visited.Visit(entry)
	tr.candidates.Push(queue.Item{ID: entry, Dist: entryDist})
	if allow == nil || allow(entry) {
		tr.results.Push(queue.Item{ID: entry, Dist: entryDist})
	}

	for tr.candidates.Len() > 0 {
		c, _ := tr.candidates.Pop()

		if worst, ok := tr.results.Top(); ok && tr.results.Len() >= ef && c.Dist > worst.Dist {
			break
		}

		n := i.getNode(c.ID)
		if n == nil {
			continue
		}

		for _, nb := range n.neighbors(l) {
			if tr.visited.Visited(nb) {
				continue
			}
			tr.visited.Visit(nb)

			d := i.distToRow(vec, nb)

			worst, ok := tr.results.Top()
			if !ok || tr.results.Len() < ef || d < worst.Dist {
				tr.candidates.Push(queue.Item{ID: nb, Dist: d})
				if allow == nil || allow(nb) {
					tr.results.PushBounded(queue.Item{ID: nb, Dist: d}, ef)
				}
			}
		}
	}
}

// BruteSearch scans every stored vector and returns the exact k nearest
// neighbors. It is the ground truth used to evaluate graph recall and a
// reasonable choice for very small indexes.
func (i *Index) BruteSearch(query []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if len(query) != i.col.Dimension() {
		return nil, &column.ErrDimensionMismatch{Expected: i.col.Dimension(), Actual: len(query)}
	}
	if i.count.Load() == 0 {
		return nil, ErrEmptyIndex
	}

	q := query
	if i.metric == distance.MetricCosine {
		normalized, ok := distance.NormalizeL2Copy(query)
		if !ok {
			return nil, ErrZeroVector
		}
		q = normalized
	}

	top := queue.NewMax(k)
	nodes := *i.nodes.Load()
	for id := range nodes {
		n := nodes[id].Load()
		if n == nil {
			continue
		}
		top.PushBounded(queue.Item{ID: n.id, Dist: i.distToRow(q, n.id)}, k)
	}

	return drainTopK(top, k), nil
}

// drainTopK empties the bounded max-heap into a sorted result slice of at
// most k entries.
func drainTopK(q *queue.Queue, k int) []Result {
	n := q.Len()
	if n > k {
		n = k
	}

	results := make([]Result, 0, n)
	for q.Len() > 0 {
		it, _ := q.Pop()
		results = append(results, Result{ID: it.ID, Distance: it.Dist})
	}
	sortResults(results)
	if len(results) > k {
		results = results[:k]
	}
	return results
}

func sortResults(rs []Result) {
	sort.Slice(rs, func(a, b int) bool {
		if rs[a].Distance != rs[b].Distance {
			return rs[a].Distance < rs[b].Distance
		}
		return rs[a].ID < rs[b].ID
	})
}

func sortItems(items []queue.Item) {
	sort.Slice(items, func(a, b int) bool {
		if items[a].Dist != items[b].Dist {
			return items[a].Dist < items[b].Dist
		}
		return items[a].ID < items[b].ID
	})
}
