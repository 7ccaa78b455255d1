package application

// Gate authorizes operators against a static allow-list.
type Gate struct {
	allowed   map[int64]struct{}
	operators []int64
}

func NewGate(operatorIDs []int64) *Gate {
	g := &Gate{allowed: make(map[int64]struct{}, len(operatorIDs))}
	for _, id := range operatorIDs {
		if _, dup := g.allowed[id]; dup {
			continue
		}
		g.allowed[id] = struct{}{}
		g.operators = append(g.operators, id)
	}
	return g
}

func (g *Gate) Allowed(operatorID int64) bool {
	_, ok := g.allowed[operatorID]
	return ok
}

// Operators returns the allow-list in configuration order without duplicates.
func (g *Gate) Operators() []int64 {
	return append([]int64(nil), g.operators...)
}
