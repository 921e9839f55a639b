// Package path plans routes over the maze with A* and memoizes results in a
// level-scoped cache.
package path

import (
	"container/heap"
	"time"

	"mazebound/server/internal/grid"
)

// turnPenalty is added to the step cost whenever a move changes direction
// relative to its predecessor. It deliberately biases the search toward
// straight corridors even when a same-length zigzag exists; agent behavior
// depends on this exact value, so it is not a candidate for "fixing" toward
// strict shortest-path.
const turnPenalty = 0.1

// Planner runs A* searches against one maze and shares a route cache across
// every agent of the level.
type Planner struct {
	maze  *grid.Maze
	cache *routeCache
}

// Option adjusts planner construction.
type Option func(*config)

type config struct {
	maxEntries int
	clock      func() time.Time
}

// WithClock substitutes the cache timestamp source, used by tests to step
// simulated time.
func WithClock(clock func() time.Time) Option {
	return func(cfg *config) { cfg.clock = clock }
}

// WithCacheSize overrides the cache entry bound.
func WithCacheSize(maxEntries int) Option {
	return func(cfg *config) { cfg.maxEntries = maxEntries }
}

// NewPlanner builds a planner and its cache for the given maze.
func NewPlanner(maze *grid.Maze, opts ...Option) *Planner {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Planner{
		maze:  maze,
		cache: newRouteCache(cfg.maxEntries, cfg.clock),
	}
}

// ClearCache drops every memoized route. Called on level reset.
func (p *Planner) ClearCache() {
	if p == nil || p.cache == nil {
		return
	}
	p.cache.clear()
}

// CachedRoutes reports the current cache population, for diagnostics.
func (p *Planner) CachedRoutes() int {
	if p == nil || p.cache == nil {
		return 0
	}
	return p.cache.len()
}

// FindPath returns the waypoints from the cell after start up to and
// including target, or an empty route when target is unreachable or equals
// start. Results are memoized by (start,target); hits return an independent
// copy.
func (p *Planner) FindPath(start, target grid.Point) []grid.Point {
	if p == nil || p.maze == nil {
		return nil
	}
	if start == target {
		return nil
	}

	key := routeKey{start: start, target: target}
	if route, ok := p.cache.get(key); ok {
		return route
	}

	route := p.search(start, target)
	p.cache.put(key, route)
	return clonePath(route)
}

// FindPathToNearest behaves like FindPath but, when the direct target yields
// no route, retries cells on expanding Manhattan rings around the target up
// to maxRadius, returning the first route found. Personality targets are
// predictions and routinely land inside walls or out of bounds; this is the
// recovery for that.
func (p *Planner) FindPathToNearest(start, target grid.Point, maxRadius int) []grid.Point {
	if route := p.FindPath(start, target); len(route) > 0 {
		return route
	}
	for radius := 1; radius <= maxRadius; radius++ {
		for _, cell := range manhattanRing(target, radius) {
			if route := p.FindPath(start, cell); len(route) > 0 {
				return route
			}
		}
	}
	return nil
}

// manhattanRing lists the cells at exactly the given Manhattan radius, in
// generation order: sweeping dx from -radius to radius with the negative-z
// cell before the positive-z one.
func manhattanRing(center grid.Point, radius int) []grid.Point {
	cells := make([]grid.Point, 0, 4*radius)
	for dx := -radius; dx <= radius; dx++ {
		rem := radius - abs(dx)
		cells = append(cells, grid.Point{X: center.X + dx, Z: center.Z - rem})
		if rem != 0 {
			cells = append(cells, grid.Point{X: center.X + dx, Z: center.Z + rem})
		}
	}
	return cells
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type searchNode struct {
	cell   grid.Point
	dir    grid.Point
	g      float64
	h      float64
	f      float64
	index  int
	parent *searchNode
}

type searchQueue []*searchNode

func (q searchQueue) Len() int { return len(q) }

// Less orders by total cost, breaking ties toward the node nearer the target.
func (q searchQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].h < q[j].h
}

func (q searchQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *searchQueue) Push(x any) {
	n := len(*q)
	node := x.(*searchNode)
	node.index = n
	*q = append(*q, node)
}

func (q *searchQueue) Pop() any {
	old := *q
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*q = old[:n-1]
	return node
}

func heuristic(a, b grid.Point) float64 {
	return float64(a.Manhattan(b))
}

func (p *Planner) search(start, target grid.Point) []grid.Point {
	if p.maze.IsWall(target.X, target.Z) || p.maze.IsWall(start.X, start.Z) {
		return nil
	}

	open := &searchQueue{}
	heap.Init(open)
	heap.Push(open, &searchNode{cell: start, h: heuristic(start, target), f: heuristic(start, target)})

	gScore := map[grid.Point]float64{start: 0}
	closed := make(map[grid.Point]struct{})

	for open.Len() > 0 {
		current := heap.Pop(open).(*searchNode)
		if _, seen := closed[current.cell]; seen {
			continue
		}
		closed[current.cell] = struct{}{}
		if current.cell == target {
			return reconstruct(current)
		}

		for _, dir := range grid.OrthogonalDirs {
			next := current.cell.Add(dir)
			if p.maze.IsWall(next.X, next.Z) {
				continue
			}
			if _, seen := closed[next]; seen {
				continue
			}
			tentative := current.g + 1
			if !current.dir.IsZero() && current.dir != dir {
				tentative += turnPenalty
			}
			if prev, ok := gScore[next]; ok && tentative >= prev {
				continue
			}
			gScore[next] = tentative
			h := heuristic(next, target)
			heap.Push(open, &searchNode{
				cell:   next,
				dir:    dir,
				g:      tentative,
				h:      h,
				f:      tentative + h,
				parent: current,
			})
		}
	}
	return nil
}

// reconstruct walks parent links back to the start and returns the waypoints
// in travel order, start cell excluded.
func reconstruct(end *searchNode) []grid.Point {
	length := 0
	for node := end; node.parent != nil; node = node.parent {
		length++
	}
	route := make([]grid.Point, length)
	for node := end; node.parent != nil; node = node.parent {
		length--
		route[length] = node.cell
	}
	return route
}
