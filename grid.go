package main

import (
	"log"
	"math"
)

const (
	// Direction components with squared length below this are treated as zero
	rayDirEpsilonSqr = 1e-4
	rayAxisEpsilon   = 1e-4

	// Substitute radius for asteroids whose collision radius came out non-positive
	minGridRadius = 0.5
)

// CellCoord is an integer cell coordinate triple
type CellCoord struct {
	X, Y, Z int
}

// UniformGrid partitions an axis-aligned region of world space into
// fixed-size cells, each holding the indices of the asteroids whose bounds
// overlap it. It is the broad phase for both proximity and ray queries:
// results are candidate sets, and callers run the exact sphere tests.
//
// The grid is built wholesale from an asteroid slice and rebuilt on field
// reload; there is no incremental insert/remove after a build.
type UniformGrid struct {
	minBounds Vector3
	maxBounds Vector3
	cellSize  Vector3

	dimX, dimY, dimZ int
	totalCells       int

	cells [][]int
}

// NewUniformGrid creates a grid covering [minBounds, maxBounds] with the given
// per-axis cell size. Non-positive cell size components are replaced with 1.0
// and dimensions are clamped to at least one cell per axis, so a misconfigured
// grid degrades to coarse results instead of dividing by zero.
func NewUniformGrid(minBounds, maxBounds, cellSize Vector3) *UniformGrid {
	if cellSize.X <= 0 {
		cellSize.X = 1.0
	}
	if cellSize.Y <= 0 {
		cellSize.Y = 1.0
	}
	if cellSize.Z <= 0 {
		cellSize.Z = 1.0
	}

	size := maxBounds.Sub(minBounds)
	g := &UniformGrid{
		minBounds: minBounds,
		maxBounds: maxBounds,
		cellSize:  cellSize,
		dimX:      int(math.Ceil(size.X / cellSize.X)),
		dimY:      int(math.Ceil(size.Y / cellSize.Y)),
		dimZ:      int(math.Ceil(size.Z / cellSize.Z)),
	}
	if g.dimX <= 0 {
		g.dimX = 1
	}
	if g.dimY <= 0 {
		g.dimY = 1
	}
	if g.dimZ <= 0 {
		g.dimZ = 1
	}
	g.totalCells = g.dimX * g.dimY * g.dimZ
	g.cells = make([][]int, g.totalCells)

	log.Printf("grid: initialized dims(%d,%d,%d) cells=%d", g.dimX, g.dimY, g.dimZ, g.totalCells)
	return g
}

// Dims returns the per-axis cell counts
func (g *UniformGrid) Dims() (int, int, int) {
	return g.dimX, g.dimY, g.dimZ
}

// TotalCells returns the flat cell count
func (g *UniformGrid) TotalCells() int {
	return g.totalCells
}

// Clear empties every cell (keeps allocated capacity)
func (g *UniformGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// CellIndices maps a world position to cell coordinates, clamped per axis.
// Points outside the indexed region map to the nearest boundary cell.
func (g *UniformGrid) CellIndices(pos Vector3) CellCoord {
	rel := pos.Sub(g.minBounds)
	return CellCoord{
		X: ClampInt(int(math.Floor(rel.X/g.cellSize.X)), 0, g.dimX-1),
		Y: ClampInt(int(math.Floor(rel.Y/g.cellSize.Y)), 0, g.dimY-1),
		Z: ClampInt(int(math.Floor(rel.Z/g.cellSize.Z)), 0, g.dimZ-1),
	}
}

// FlatIndex converts cell coordinates to the flat storage index.
// Pure arithmetic; callers validate the coordinate first.
func (g *UniformGrid) FlatIndex(ix, iy, iz int) int {
	return ix + iy*g.dimX + iz*g.dimX*g.dimY
}

// ValidIndex reports whether the cell coordinate is inside the grid
func (g *UniformGrid) ValidIndex(ix, iy, iz int) bool {
	return ix >= 0 && ix < g.dimX &&
		iy >= 0 && iy < g.dimY &&
		iz >= 0 && iz < g.dimZ
}

// Add registers an asteroid index in every cell the given world-space box
// overlaps. A flat index outside storage is dropped with a diagnostic rather
// than written.
func (g *UniformGrid) Add(index int, boundsMin, boundsMax Vector3) {
	lo := g.CellIndices(boundsMin)
	hi := g.CellIndices(boundsMax)

	for iz := lo.Z; iz <= hi.Z; iz++ {
		for iy := lo.Y; iy <= hi.Y; iy++ {
			for ix := lo.X; ix <= hi.X; ix++ {
				if !g.ValidIndex(ix, iy, iz) {
					continue
				}
				cell := g.FlatIndex(ix, iy, iz)
				if cell < 0 || cell >= g.totalCells {
					log.Printf("grid: add skipped invalid cell %d for (%d,%d,%d)", cell, ix, iy, iz)
					continue
				}
				g.cells[cell] = append(g.cells[cell], index)
			}
		}
	}
}

// Build clears the grid and registers every active asteroid under its slice
// index, using a cube bound of half-extent = collision radius. A non-positive
// radius falls back to minGridRadius so the asteroid still lands in a cell.
func (g *UniformGrid) Build(asteroids []Asteroid) {
	g.Clear()
	for i := range asteroids {
		if !asteroids[i].Active {
			continue
		}
		r := asteroids[i].CollisionRadius
		if r <= 0 {
			r = minGridRadius
		}
		p := asteroids[i].Position
		g.Add(i,
			Vector3{p.X - r, p.Y - r, p.Z - r},
			Vector3{p.X + r, p.Y + r, p.Z + r})
	}
}

// Query returns the deduplicated asteroid indices registered in the 3x3x3
// block of cells around pos. An asteroid registered in a neighboring cell can
// still overlap pos near a cell boundary, so the whole neighborhood is read.
func (g *UniformGrid) Query(pos Vector3) []int {
	unique := make(map[int]struct{})
	center := g.CellIndices(pos)

	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				ix, iy, iz := center.X+dx, center.Y+dy, center.Z+dz
				if !g.ValidIndex(ix, iy, iz) {
					continue
				}
				cell := g.FlatIndex(ix, iy, iz)
				if cell < 0 || cell >= g.totalCells {
					log.Printf("grid: query skipped invalid cell %d for (%d,%d,%d)", cell, ix, iy, iz)
					continue
				}
				for _, idx := range g.cells[cell] {
					unique[idx] = struct{}{}
				}
			}
		}
	}
	return setToSlice(unique)
}

// QueryRay returns the union of asteroid indices from every cell the ray
// passes through, up to maxDistance along the ray. Incremental voxel stepping:
// each step advances the axis whose next cell boundary is nearest (X checked
// before Y before Z on exact ties), so cells are visited exactly once in
// increasing entry distance.
func (g *UniformGrid) QueryRay(origin, direction Vector3, maxDistance float64) []int {
	if direction.LengthSqr() < rayDirEpsilonSqr {
		return g.Query(origin)
	}

	unique := make(map[int]struct{})
	collect := func(ix, iy, iz int) {
		cell := g.FlatIndex(ix, iy, iz)
		if cell < 0 || cell >= g.totalCells {
			log.Printf("grid: ray query skipped invalid cell %d for (%d,%d,%d)", cell, ix, iy, iz)
			return
		}
		for _, idx := range g.cells[cell] {
			unique[idx] = struct{}{}
		}
	}

	start := g.CellIndices(origin)
	ix, iy, iz := start.X, start.Y, start.Z

	stepX, stepY, stepZ := 1, 1, 1
	if direction.X < 0 {
		stepX = -1
	}
	if direction.Y < 0 {
		stepY = -1
	}
	if direction.Z < 0 {
		stepZ = -1
	}

	inf := math.Inf(1)
	tMaxX, tMaxY, tMaxZ := inf, inf, inf
	tDeltaX, tDeltaY, tDeltaZ := inf, inf, inf

	if math.Abs(direction.X) > rayAxisEpsilon {
		next := float64(ix) * g.cellSize.X
		if stepX > 0 {
			next = float64(ix+1) * g.cellSize.X
		}
		tMaxX = (next + g.minBounds.X - origin.X) / direction.X
		tDeltaX = math.Abs(g.cellSize.X / direction.X)
	}
	if math.Abs(direction.Y) > rayAxisEpsilon {
		next := float64(iy) * g.cellSize.Y
		if stepY > 0 {
			next = float64(iy+1) * g.cellSize.Y
		}
		tMaxY = (next + g.minBounds.Y - origin.Y) / direction.Y
		tDeltaY = math.Abs(g.cellSize.Y / direction.Y)
	}
	if math.Abs(direction.Z) > rayAxisEpsilon {
		next := float64(iz) * g.cellSize.Z
		if stepZ > 0 {
			next = float64(iz+1) * g.cellSize.Z
		}
		tMaxZ = (next + g.minBounds.Z - origin.Z) / direction.Z
		tDeltaZ = math.Abs(g.cellSize.Z / direction.Z)
	}

	// The starting cell counts as visited before any stepping
	if g.ValidIndex(ix, iy, iz) {
		collect(ix, iy, iz)
	}

	// Each step advances one axis coordinate monotonically, so the walk leaves
	// the grid after at most dimX+dimY+dimZ steps regardless of maxDistance.
	maxSteps := g.dimX + g.dimY + g.dimZ
	currentT := 0.0
	for step := 0; step <= maxSteps && currentT < maxDistance; step++ {
		if tMaxX <= tMaxY && tMaxX <= tMaxZ {
			currentT = tMaxX
			tMaxX += tDeltaX
			ix += stepX
		} else if tMaxY <= tMaxZ {
			currentT = tMaxY
			tMaxY += tDeltaY
			iy += stepY
		} else {
			currentT = tMaxZ
			tMaxZ += tDeltaZ
			iz += stepZ
		}

		if currentT >= maxDistance {
			break
		}
		if !g.ValidIndex(ix, iy, iz) {
			// Ray left the indexed region
			break
		}
		collect(ix, iy, iz)
	}

	return setToSlice(unique)
}

func setToSlice(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for idx := range set {
		out = append(out, idx)
	}
	return out
}
