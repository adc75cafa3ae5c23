package world

import (
	"container/heap"

	"github.com/openmire/mobai/internal/ai"
	"github.com/openmire/mobai/internal/model"
)

const (
	stepCost     = 10
	diagonalCost = 25

	// maxSearchNodes bounds one path request; a tick never runs an
	// unbounded search.
	maxSearchNodes = 512

	// searchRadius bounds the search area around the start position.
	searchRadius = 32
)

type pathNode struct {
	pos    model.Position
	parent *pathNode
	cost   int32 // accumulated step cost
	rank   int32 // cost + heuristic
	index  int
}

type nodeHeap []*pathNode

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].rank < h[j].rank }
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *nodeHeap) Push(x any)        { n := x.(*pathNode); n.index = len(*h); *h = append(*h, n) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	return n
}

var stepDirections = []model.Direction{
	model.DirectionNorth,
	model.DirectionEast,
	model.DirectionSouth,
	model.DirectionWest,
	model.DirectionNorthEast,
	model.DirectionSouthEast,
	model.DirectionSouthWest,
	model.DirectionNorthWest,
}

// FindPath runs an A* search from from toward to, stopping on any cell
// whose distance to the destination falls inside [MinTargetDist,
// MaxTargetDist] (with clear sight when requested). KeepDistance searches
// on for the farthest qualifying cell instead of the first one.
func (g *Grid) FindPath(from, to model.Position, params ai.PathParams) ([]model.Direction, bool) {
	if from.Z != to.Z {
		return nil, false
	}

	startDist := from.ChebyshevDistance(to)

	qualifies := func(pos model.Position) bool {
		d := pos.ChebyshevDistance(to)
		if d < params.MinTargetDist {
			return false
		}
		if params.MaxTargetDist > 0 && d > params.MaxTargetDist {
			return false
		}
		if params.ClearSight && !g.SightClear(pos, to, true) {
			return false
		}
		return true
	}

	heuristic := func(pos model.Position) int32 {
		d := pos.ChebyshevDistance(to)
		if params.KeepDistance {
			if d >= params.MaxTargetDist {
				return 0
			}
			return (params.MaxTargetDist - d) * stepCost
		}
		return d * stepCost
	}

	start := &pathNode{pos: from, rank: heuristic(from)}
	open := &nodeHeap{}
	heap.Init(open)
	heap.Push(open, start)

	bestCost := map[model.Position]int32{from: 0}
	closed := make(map[model.Position]bool)

	var bestMatch *pathNode
	var bestMatchDist int32 = -1

	expanded := 0
	for open.Len() > 0 && expanded < maxSearchNodes {
		node := heap.Pop(open).(*pathNode)
		if closed[node.pos] {
			continue
		}
		closed[node.pos] = true
		expanded++

		if qualifies(node.pos) {
			if !params.KeepDistance {
				return buildPath(node), true
			}
			if d := node.pos.ChebyshevDistance(to); d > bestMatchDist {
				bestMatch = node
				bestMatchDist = d
			}
			if bestMatchDist >= params.MaxTargetDist {
				break
			}
		}

		for _, dir := range stepDirections {
			next := node.pos.Next(dir)
			if closed[next] {
				continue
			}
			if from.ChebyshevDistance(next) > searchRadius {
				continue
			}
			if !params.FullSearch && !params.KeepDistance &&
				next.ChebyshevDistance(to) > startDist {
				// not allowed to walk away from the target first
				continue
			}
			if !g.walkable(next) {
				continue
			}

			cost := node.cost + stepCost
			if dir >= model.DirectionSouthWest {
				cost = node.cost + diagonalCost
			}
			if prev, seen := bestCost[next]; seen && prev <= cost {
				continue
			}
			bestCost[next] = cost

			heap.Push(open, &pathNode{
				pos:    next,
				parent: node,
				cost:   cost,
				rank:   cost + heuristic(next),
			})
		}
	}

	if bestMatch != nil {
		return buildPath(bestMatch), true
	}
	return nil, false
}

// walkable reports whether a search may step onto pos: an existing,
// unobstructed, unoccupied tile.
func (g *Grid) walkable(pos model.Position) bool {
	tile, ok := g.tileAt(pos)
	if !ok || tile.BlocksPath() {
		return false
	}
	return len(tile.creatures) == 0
}

// buildPath converts the parent chain into a step sequence.
func buildPath(node *pathNode) []model.Direction {
	var reversed []model.Position
	for n := node; n != nil; n = n.parent {
		reversed = append(reversed, n.pos)
	}

	path := make([]model.Direction, 0, len(reversed)-1)
	for i := len(reversed) - 1; i > 0; i-- {
		path = append(path, stepDirection(reversed[i], reversed[i-1]))
	}
	return path
}

// stepDirection returns the direction of one adjacent step.
func stepDirection(from, to model.Position) model.Direction {
	dx := to.X - from.X
	dy := to.Y - from.Y

	switch {
	case dx == 0 && dy < 0:
		return model.DirectionNorth
	case dx > 0 && dy == 0:
		return model.DirectionEast
	case dx == 0 && dy > 0:
		return model.DirectionSouth
	case dx < 0 && dy == 0:
		return model.DirectionWest
	case dx < 0 && dy > 0:
		return model.DirectionSouthWest
	case dx > 0 && dy > 0:
		return model.DirectionSouthEast
	case dx < 0 && dy < 0:
		return model.DirectionNorthWest
	default:
		return model.DirectionNorthEast
	}
}
