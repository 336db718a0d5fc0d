package main

import "log"

const (
	// Visual/damage effect timings shared with the game loop
	ShakeDuration = 0.25 // seconds an asteroid shakes after a hit
)

// Asteroid is one rock in the field. The grid stores only slice indices;
// deactivated asteroids stay registered until the next field reload, so
// consumers of query results must check Active themselves.
type Asteroid struct {
	ID              string
	Position        Vector3
	RotationAxis    Vector3
	RotationAngle   float64 // degrees
	RotationSpeed   float64 // degrees/s, signed
	CollisionRadius float64
	SizeMult        float64
	Gray            uint8 // base gray tone for the client
	HitPoints       int
	Active          bool

	Shaking        bool
	ShakeTimer     float64
	ShakeIntensity float64
}

// Update advances rotation and the shake timer
func (a *Asteroid) Update(dt float64) {
	if !a.Active {
		return
	}

	a.RotationAngle += a.RotationSpeed * dt
	for a.RotationAngle >= 360 {
		a.RotationAngle -= 360
	}
	for a.RotationAngle < 0 {
		a.RotationAngle += 360
	}

	if a.Shaking {
		a.ShakeTimer -= dt
		if a.ShakeTimer <= 0 {
			a.Shaking = false
		}
	}
}

// surfaceRadius returns the largest extent of an irregular rock surface:
// a base sphere with vertices displaced outward-biased by up to
// base*irregularity, sampled the way the client displaces its mesh.
func surfaceRadius(base, irregularity float64) float64 {
	max := base
	for i := 0; i < 32; i++ {
		magnitude := base * irregularity * randRange(0.5, 1.0)
		offset := magnitude * randRange(-0.5, 1.0)
		if r := base + offset; r > max {
			max = r
		}
	}
	return max
}

// randomAxis returns a random unit rotation axis
func randomAxis() Vector3 {
	for {
		v := Vector3{randRange(-1, 1), randRange(-1, 1), randRange(-1, 1)}
		if v.LengthSqr() >= 0.01 {
			return v.Normalize()
		}
	}
}

// GenerateField procedurally generates a clustered asteroid field: cluster
// centers scattered in a cube, asteroids scattered around a random cluster,
// with a chance of oversized rocks.
func GenerateField(cfg FieldConfig) []Asteroid {
	clusters := make([]Vector3, cfg.NumClusters)
	for i := range clusters {
		clusters[i] = Vector3{
			randRange(-cfg.ClusterSpread, cfg.ClusterSpread),
			randRange(-cfg.ClusterSpread, cfg.ClusterSpread),
			randRange(-cfg.ClusterSpread, cfg.ClusterSpread),
		}
	}

	asteroids := make([]Asteroid, 0, cfg.NumAsteroids)
	for i := 0; i < cfg.NumAsteroids; i++ {
		center := clusters[int(randFloat()*float64(cfg.NumClusters))%cfg.NumClusters]

		sizeMult := 1.0
		if randFloat() < cfg.LargeChance {
			sizeMult = randRange(1.8, 3.0)
		}

		radius := cfg.BaseRadius * sizeMult
		irregularity := cfg.Irregularity * randRange(0.8, 1.2)

		speed := randRange(cfg.MinRotationSpeed, cfg.MaxRotationSpeed)
		if randFloat() < 0.5 {
			speed = -speed
		}

		asteroids = append(asteroids, Asteroid{
			ID: GenerateID(4),
			Position: Vector3{
				center.X + randRange(-cfg.ScatterRadius, cfg.ScatterRadius),
				center.Y + randRange(-cfg.ScatterRadius, cfg.ScatterRadius),
				center.Z + randRange(-cfg.ScatterRadius, cfg.ScatterRadius),
			},
			RotationAxis:    randomAxis(),
			RotationAngle:   randRange(0, 360),
			RotationSpeed:   speed,
			CollisionRadius: surfaceRadius(radius, irregularity),
			SizeMult:        sizeMult,
			Gray:            uint8(randRange(50, 200)),
			HitPoints:       cfg.InitialHitPoints,
			Active:          true,
			ShakeIntensity:  cfg.ShakeMagnitude * sizeMult,
		})
	}

	log.Printf("field: generated %d asteroids in %d clusters", len(asteroids), cfg.NumClusters)
	return asteroids
}
