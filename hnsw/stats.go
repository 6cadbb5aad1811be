package hnsw

// Stats is a point-in-time snapshot of the graph shape. It is gathered
// without blocking writers, so counts taken during concurrent inserts are
// approximate.
type Stats struct {
	// Nodes is the number of inserted nodes.
	Nodes int

	// MaxLevel is the highest populated layer, or -1 for an empty graph.
	MaxLevel int

	// EntryPoint is the id the search descent starts from.
	EntryPoint uint32

	// LayerNodes counts the nodes present per layer, indexed by layer.
	LayerNodes []int

	// LayerEdges counts the directed edges per layer, indexed by layer.
	LayerEdges []int
}

// Stats walks the node table and returns the current graph shape.
func (i *Index) Stats() Stats {
	s := Stats{
		Nodes:      int(i.count.Load()),
		MaxLevel:   int(i.maxLevel.Load()),
		EntryPoint: i.entryPoint.Load(),
	}
	if s.MaxLevel < 0 {
		return s
	}

	s.LayerNodes = make([]int, s.MaxLevel+1)
	s.LayerEdges = make([]int, s.MaxLevel+1)

	nodes := *i.nodes.Load()
	for id := range nodes {
		n := nodes[id].Load()
		if n == nil {
			continue
		}
		top := int(n.level)
		if top > s.MaxLevel {
			top = s.MaxLevel
		}
		for l := 0; l <= top; l++ {
			s.LayerNodes[l]++
			s.LayerEdges[l] += n.degree(l)
		}
	}
	return s
}
