package main

import (
	"math"
	"testing"
)

func containsIndex(results []int, want int) bool {
	for _, idx := range results {
		if idx == want {
			return true
		}
	}
	return false
}

func testAsteroid(pos Vector3, radius float64) Asteroid {
	return Asteroid{
		ID:              GenerateID(4),
		Position:        pos,
		CollisionRadius: radius,
		HitPoints:       3,
		Active:          true,
	}
}

func TestGridDimensions(t *testing.T) {
	g := NewUniformGrid(
		Vector3{-10, -10, -10},
		Vector3{10, 10, 10},
		Vector3{5, 5, 5},
	)

	dx, dy, dz := g.Dims()
	if dx != 4 || dy != 4 || dz != 4 {
		t.Errorf("expected dims (4,4,4), got (%d,%d,%d)", dx, dy, dz)
	}
	if g.TotalCells() != 64 {
		t.Errorf("expected 64 cells, got %d", g.TotalCells())
	}

	// Non-dividing extents round up
	g = NewUniformGrid(Vector3{0, 0, 0}, Vector3{11, 11, 11}, Vector3{5, 5, 5})
	dx, dy, dz = g.Dims()
	if dx != 3 || dy != 3 || dz != 3 {
		t.Errorf("expected dims (3,3,3), got (%d,%d,%d)", dx, dy, dz)
	}
}

func TestGridCellSizeClamp(t *testing.T) {
	// Zero and negative cell sizes degrade to 1.0 instead of dividing by zero
	g := NewUniformGrid(Vector3{0, 0, 0}, Vector3{4, 4, 4}, Vector3{0, -2, 4})
	dx, dy, dz := g.Dims()
	if dx != 4 || dy != 4 || dz != 1 {
		t.Errorf("expected dims (4,4,1), got (%d,%d,%d)", dx, dy, dz)
	}
}

func TestGridDegenerateBounds(t *testing.T) {
	// Inverted/zero-size region still yields at least one cell
	g := NewUniformGrid(Vector3{5, 5, 5}, Vector3{5, 5, 5}, Vector3{10, 10, 10})
	if g.TotalCells() < 1 {
		t.Fatalf("expected at least 1 cell, got %d", g.TotalCells())
	}
	g.Build([]Asteroid{testAsteroid(Vector3{5, 5, 5}, 1)})
	if !containsIndex(g.Query(Vector3{5, 5, 5}), 0) {
		t.Error("expected asteroid in the single-cell grid")
	}
}

func TestGridFlatIndexRoundTrip(t *testing.T) {
	g := NewUniformGrid(Vector3{-10, -10, -10}, Vector3{10, 10, 10}, Vector3{5, 5, 5})
	dx, dy, dz := g.Dims()

	seen := make(map[int]bool)
	for iz := 0; iz < dz; iz++ {
		for iy := 0; iy < dy; iy++ {
			for ix := 0; ix < dx; ix++ {
				flat := g.FlatIndex(ix, iy, iz)
				if flat < 0 || flat >= g.TotalCells() {
					t.Fatalf("flat index %d out of range for (%d,%d,%d)", flat, ix, iy, iz)
				}
				if seen[flat] {
					t.Fatalf("flat index %d assigned twice", flat)
				}
				seen[flat] = true
			}
		}
	}
	if len(seen) != g.TotalCells() {
		t.Errorf("expected %d distinct flat indices, got %d", g.TotalCells(), len(seen))
	}
}

func TestGridCellIndicesClamp(t *testing.T) {
	g := NewUniformGrid(Vector3{-10, -10, -10}, Vector3{10, 10, 10}, Vector3{5, 5, 5})

	c := g.CellIndices(Vector3{-100, -100, -100})
	if c.X != 0 || c.Y != 0 || c.Z != 0 {
		t.Errorf("expected clamp to (0,0,0), got (%d,%d,%d)", c.X, c.Y, c.Z)
	}
	c = g.CellIndices(Vector3{100, 100, 100})
	if c.X != 3 || c.Y != 3 || c.Z != 3 {
		t.Errorf("expected clamp to (3,3,3), got (%d,%d,%d)", c.X, c.Y, c.Z)
	}
}

func TestGridPointQuery(t *testing.T) {
	g := NewUniformGrid(Vector3{-10, -10, -10}, Vector3{10, 10, 10}, Vector3{5, 5, 5})
	g.Build([]Asteroid{testAsteroid(Vector3{7, 7, 7}, 1.0)})

	if !containsIndex(g.Query(Vector3{6.5, 7, 7}), 0) {
		t.Error("expected asteroid 0 near (6.5,7,7)")
	}
	// The opposite corner's neighborhood is more than a cell away from every
	// cell the asteroid occupies
	if containsIndex(g.Query(Vector3{-10, -10, -10}), 0) {
		t.Error("should not find asteroid 0 at the far corner")
	}

	// An asteroid at the origin spans cells 1..2 per axis, which overlaps the
	// corner cell's 3x3x3 neighborhood, so the corner query does return it
	g.Build([]Asteroid{testAsteroid(Vector3{0, 0, 0}, 1.0)})
	if !containsIndex(g.Query(Vector3{-10, -10, -10}), 0) {
		t.Error("origin asteroid should appear in the corner neighborhood")
	}
}

func TestGridQueryNeighborCells(t *testing.T) {
	// An asteroid registered just across a cell boundary must still show up
	// for a point near that boundary.
	g := NewUniformGrid(Vector3{-10, -10, -10}, Vector3{10, 10, 10}, Vector3{5, 5, 5})
	g.Build([]Asteroid{testAsteroid(Vector3{5.5, 0, 0}, 0.4)})

	if !containsIndex(g.Query(Vector3{4.9, 0, 0}), 0) {
		t.Error("expected asteroid in neighbor cell to be returned")
	}
}

func TestGridQueryDedup(t *testing.T) {
	// A large asteroid spans many cells but must appear once per query
	g := NewUniformGrid(Vector3{-10, -10, -10}, Vector3{10, 10, 10}, Vector3{5, 5, 5})
	g.Build([]Asteroid{testAsteroid(Vector3{0, 0, 0}, 8.0)})

	results := g.Query(Vector3{0, 0, 0})
	count := 0
	for _, idx := range results {
		if idx == 0 {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly 1 occurrence, got %d", count)
	}
}

func TestGridPointQuerySoundness(t *testing.T) {
	// Every asteroid whose sphere contains the query point must be in the
	// candidate set.
	g := NewUniformGrid(Vector3{-20, -20, -20}, Vector3{20, 20, 20}, Vector3{4, 4, 4})
	asteroids := []Asteroid{
		testAsteroid(Vector3{0, 0, 0}, 2.0),
		testAsteroid(Vector3{3, 0, 0}, 1.5),
		testAsteroid(Vector3{-6, 2, 1}, 3.0),
		testAsteroid(Vector3{15, 15, 15}, 1.0),
	}
	g.Build(asteroids)

	points := []Vector3{
		{0, 0, 0}, {1.9, 0, 0}, {2.5, 0, 0}, {-4, 1, 0}, {15.5, 15, 15},
	}
	for _, p := range points {
		results := g.Query(p)
		for i := range asteroids {
			d := Distance3(p, asteroids[i].Position)
			if d <= asteroids[i].CollisionRadius && !containsIndex(results, i) {
				t.Errorf("query %v missed asteroid %d containing the point", p, i)
			}
		}
	}
}

func TestGridInactiveExcluded(t *testing.T) {
	g := NewUniformGrid(Vector3{-10, -10, -10}, Vector3{10, 10, 10}, Vector3{5, 5, 5})
	a := testAsteroid(Vector3{0, 0, 0}, 1.0)
	a.Active = false
	g.Build([]Asteroid{a})

	if len(g.Query(Vector3{0, 0, 0})) != 0 {
		t.Error("inactive asteroid should not be registered")
	}
}

func TestGridZeroRadiusFallback(t *testing.T) {
	g := NewUniformGrid(Vector3{-10, -10, -10}, Vector3{10, 10, 10}, Vector3{5, 5, 5})
	a := testAsteroid(Vector3{0, 0, 0}, 0)
	g.Build([]Asteroid{a})

	if !containsIndex(g.Query(Vector3{0, 0, 0}), 0) {
		t.Error("zero-radius asteroid should still land in its cell")
	}
}

func TestGridClear(t *testing.T) {
	g := NewUniformGrid(Vector3{-10, -10, -10}, Vector3{10, 10, 10}, Vector3{5, 5, 5})
	g.Build([]Asteroid{testAsteroid(Vector3{0, 0, 0}, 1.0)})
	g.Clear()

	if len(g.Query(Vector3{0, 0, 0})) != 0 {
		t.Error("expected no results after clear")
	}
}

func TestGridRebuildReplacesContents(t *testing.T) {
	g := NewUniformGrid(Vector3{-10, -10, -10}, Vector3{10, 10, 10}, Vector3{5, 5, 5})
	g.Build([]Asteroid{testAsteroid(Vector3{0, 0, 0}, 1.0)})
	g.Build([]Asteroid{testAsteroid(Vector3{7, 7, 7}, 1.0)})

	if containsIndex(g.Query(Vector3{0, 0, 0}), 0) && !containsIndex(g.Query(Vector3{7, 7, 7}), 0) {
		t.Error("rebuild should replace previous contents")
	}
	if !containsIndex(g.Query(Vector3{7, 7, 7}), 0) {
		t.Error("expected new asteroid after rebuild")
	}
}

func TestGridRayQueryStraight(t *testing.T) {
	g := NewUniformGrid(Vector3{-10, -10, -10}, Vector3{10, 10, 10}, Vector3{5, 5, 5})
	g.Build([]Asteroid{testAsteroid(Vector3{0, 0, 0}, 1.0)})

	// Ray through the middle hits the asteroid's cells
	if !containsIndex(g.QueryRay(Vector3{-10, 0, 0}, Vector3{1, 0, 0}, 20), 0) {
		t.Error("expected asteroid 0 along the ray")
	}
	// Parallel ray along the top edge misses
	if containsIndex(g.QueryRay(Vector3{-10, 9, 9}, Vector3{1, 0, 0}, 20), 0) {
		t.Error("edge ray should not return asteroid 0")
	}
}

func TestGridRayQueryMaxDistance(t *testing.T) {
	g := NewUniformGrid(Vector3{-10, -10, -10}, Vector3{10, 10, 10}, Vector3{5, 5, 5})
	g.Build([]Asteroid{testAsteroid(Vector3{8, 0, 0}, 1.0)})

	// Ray stops before reaching the asteroid's cells
	if containsIndex(g.QueryRay(Vector3{-9, 0, 0}, Vector3{1, 0, 0}, 5), 0) {
		t.Error("ray should stop before reaching the asteroid")
	}
	// Long enough reaches it
	if !containsIndex(g.QueryRay(Vector3{-9, 0, 0}, Vector3{1, 0, 0}, 30), 0) {
		t.Error("expected asteroid within max distance")
	}
}

func TestGridRayQueryDiagonal(t *testing.T) {
	g := NewUniformGrid(Vector3{-10, -10, -10}, Vector3{10, 10, 10}, Vector3{5, 5, 5})
	g.Build([]Asteroid{testAsteroid(Vector3{5, 5, 5}, 1.0)})

	dir := Vector3{1, 1, 1}.Normalize()
	if !containsIndex(g.QueryRay(Vector3{-9, -9, -9}, dir, 40), 0) {
		t.Error("expected asteroid along the diagonal ray")
	}
}

func TestGridRayQueryDegenerateDirection(t *testing.T) {
	g := NewUniformGrid(Vector3{-10, -10, -10}, Vector3{10, 10, 10}, Vector3{5, 5, 5})
	g.Build([]Asteroid{testAsteroid(Vector3{0, 0, 0}, 1.0)})

	// Near-zero direction degrades to a point query at the origin
	results := g.QueryRay(Vector3{0.5, 0, 0}, Vector3{0, 0, 0}, 50)
	if !containsIndex(results, 0) {
		t.Error("degenerate ray should fall back to a point query")
	}
}

func TestGridRayQueryTerminates(t *testing.T) {
	g := NewUniformGrid(Vector3{-10, -10, -10}, Vector3{10, 10, 10}, Vector3{5, 5, 5})
	g.Build([]Asteroid{testAsteroid(Vector3{0, 0, 0}, 1.0)})

	// Axis-aligned rays with exact zero components, huge max distance, and
	// rays that start outside the region must all return.
	dirs := []Vector3{
		{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{-1, 0, 0}, {0, -1, 0}, {0, 0, -1},
		{1, 1, 0}, {0, 1, 1},
	}
	for _, d := range dirs {
		g.QueryRay(Vector3{-9.5, -9.5, -9.5}, d, 1e9)
		g.QueryRay(Vector3{50, 50, 50}, d, 1e9)
	}
}

func TestGridRayQueryCompleteness(t *testing.T) {
	// The cell walk must cover everything a dense sampling of the segment
	// touches: every asteroid found by sampled point lookups must also be in
	// the ray result.
	g := NewUniformGrid(Vector3{-20, -20, -20}, Vector3{20, 20, 20}, Vector3{4, 4, 4})
	asteroids := []Asteroid{
		testAsteroid(Vector3{-10, -3, 2}, 1.5),
		testAsteroid(Vector3{0, 0, 0}, 2.0),
		testAsteroid(Vector3{8, 4, -2}, 1.0),
		testAsteroid(Vector3{15, 15, 15}, 2.5),
		testAsteroid(Vector3{-5, 10, -10}, 1.0),
	}
	g.Build(asteroids)

	rays := []struct {
		origin Vector3
		dir    Vector3
		dist   float64
	}{
		{Vector3{-18, -5, 3}, Vector3{1, 0.2, -0.1}, 35},
		{Vector3{-15, -15, -15}, Vector3{1, 1, 1}, 50},
		{Vector3{0, 18, 0}, Vector3{0, -1, 0}, 36},
		{Vector3{18, 5, -3}, Vector3{-1, -0.1, 0.1}, 30},
	}

	for _, r := range rays {
		dir := r.dir.Normalize()
		got := g.QueryRay(r.origin, dir, r.dist)

		for tt := 0.0; tt < r.dist*0.99; tt += 0.05 {
			p := r.origin.Add(dir.Scale(tt))
			if p.X <= -20 || p.X >= 20 || p.Y <= -20 || p.Y >= 20 || p.Z <= -20 || p.Z >= 20 {
				continue
			}
			c := g.CellIndices(p)
			cell := g.FlatIndex(c.X, c.Y, c.Z)
			for _, idx := range g.cells[cell] {
				if !containsIndex(got, idx) {
					t.Fatalf("ray from %v dir %v: sampled cell at t=%.2f holds %d, missing from result",
						r.origin, dir, tt, idx)
				}
			}
		}
	}
}

func TestGridRayVsBruteForceHit(t *testing.T) {
	// End to end: broad phase plus exact sphere test agrees with a brute-force
	// scan over all asteroids.
	g := NewUniformGrid(Vector3{-20, -20, -20}, Vector3{20, 20, 20}, Vector3{4, 4, 4})
	asteroids := []Asteroid{
		testAsteroid(Vector3{10, 0, 0}, 2.0),
		testAsteroid(Vector3{5, 0.5, 0}, 1.0),
		testAsteroid(Vector3{-8, 0, 0}, 1.5),
	}
	g.Build(asteroids)

	origin := Vector3{-19, 0, 0}
	dir := Vector3{1, 0, 0}

	bruteBest, bruteDist := -1, math.Inf(1)
	for i := range asteroids {
		hit := RaySphereIntersect(origin, dir, asteroids[i].Position, asteroids[i].CollisionRadius)
		if hit.Hit && hit.Distance < bruteDist {
			bruteBest, bruteDist = i, hit.Distance
		}
	}

	gridBest, gridDist := -1, math.Inf(1)
	for _, idx := range g.QueryRay(origin, dir, 60) {
		hit := RaySphereIntersect(origin, dir, asteroids[idx].Position, asteroids[idx].CollisionRadius)
		if hit.Hit && hit.Distance < gridDist {
			gridBest, gridDist = idx, hit.Distance
		}
	}

	if gridBest != bruteBest {
		t.Errorf("grid pick %d != brute-force pick %d", gridBest, bruteBest)
	}
}
