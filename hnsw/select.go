package hnsw

import "github.com/hupe1980/annindex/internal/queue"

// selectNeighbors applies the diversity heuristic to the candidates left in
// tr.results by searchLayer and returns at most limit of them, closest
// first. The returned slice aliases tr.selected and is only valid until the
// next selection on the same traversal.
func (i *Index) selectNeighbors(tr *traversal, limit int) []queue.Item {
	tr.scratch = tr.scratch[:0]
	for tr.results.Len() > 0 {
		it, _ := tr.results.Pop()
		tr.scratch = append(tr.scratch, it)
	}
	sortItems(tr.scratch)

	return i.selectFromSorted(tr, tr.scratch, limit)
}

// selectFromSorted runs the heuristic over candidates already sorted by
// ascending distance to the base vector. A candidate is accepted only if it
// is closer to the base than to every previously accepted neighbor, which
// spreads the edges across directions instead of clustering them. Rejected
// candidates fill remaining slots afterwards so low-degree nodes still get
// their full quota.
func (i *Index) selectFromSorted(tr *traversal, candidates []queue.Item, limit int) []queue.Item {
	if len(candidates) <= limit {
		return candidates
	}

	tr.selected = tr.selected[:0]
	var rejected []queue.Item

	for _, c := range candidates {
		if len(tr.selected) >= limit {
			break
		}

		cVec, ok := i.col.Get(int(c.ID))
		if !ok {
			continue
		}

		diverse := true
		for _, s := range tr.selected {
			sVec, ok := i.col.Get(int(s.ID))
			if !ok {
				continue
			}
			if i.distFunc(cVec, sVec) < c.Dist {
				diverse = false
				break
			}
		}

		if diverse {
			tr.selected = append(tr.selected, c)
		} else {
			rejected = append(rejected, c)
		}
	}

	for _, c := range rejected {
		if len(tr.selected) >= limit {
			break
		}
		tr.selected = append(tr.selected, c)
	}

	return tr.selected
}
