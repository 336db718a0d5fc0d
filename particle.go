package main

const MaxParticles = 500

// Particle is one debris fleck from an asteroid destruction
type Particle struct {
	Position Vector3
	Velocity Vector3
	Life     float64
	Gray     uint8
	Active   bool
}

// ParticlePool is a fixed-size pool with ring allocation: emitting past the
// pool size recycles the oldest slots. Owned by a Game, never shared.
type ParticlePool struct {
	particles []Particle
	next      int
}

// NewParticlePool creates a pool of the given capacity
func NewParticlePool(max int) *ParticlePool {
	if max <= 0 {
		max = MaxParticles
	}
	return &ParticlePool{particles: make([]Particle, max)}
}

// Reset deactivates every particle
func (pp *ParticlePool) Reset() {
	for i := range pp.particles {
		pp.particles[i].Active = false
	}
	pp.next = 0
}

// Update ages and integrates all active particles
func (pp *ParticlePool) Update(dt float64) {
	for i := range pp.particles {
		p := &pp.particles[i]
		if !p.Active {
			continue
		}
		p.Life -= dt
		if p.Life <= 0 {
			p.Active = false
			continue
		}
		p.Position = p.Position.Add(p.Velocity.Scale(dt))
	}
}

// Emit spawns count particles at position with randomized direction, speed
// (0.5x-1.5x) and lifetime (0.5x-1.5x of duration)
func (pp *ParticlePool) Emit(position Vector3, count int, speed, duration float64, gray uint8) {
	for i := 0; i < count; i++ {
		p := &pp.particles[pp.next]
		p.Active = true
		p.Position = position
		p.Gray = gray
		p.Life = duration * randRange(0.5, 1.5)

		dir := Vector3{randRange(-1, 1), randRange(-1, 1), randRange(-1, 1)}
		if dir.LengthSqr() < 0.001 {
			dir = Vector3{1, 0, 0}
		}
		p.Velocity = dir.Normalize().Scale(speed * randRange(0.5, 1.5))

		pp.next++
		if pp.next >= len(pp.particles) {
			pp.next = 0
		}
	}
}

// ActiveCount returns the number of live particles
func (pp *ParticlePool) ActiveCount() int {
	n := 0
	for i := range pp.particles {
		if pp.particles[i].Active {
			n++
		}
	}
	return n
}

// Snapshot converts active particles to protocol states
func (pp *ParticlePool) Snapshot() []ParticleState {
	out := make([]ParticleState, 0, 64)
	for i := range pp.particles {
		p := &pp.particles[i]
		if !p.Active {
			continue
		}
		out = append(out, ParticleState{
			X: p.Position.X, Y: p.Position.Y, Z: p.Position.Z,
			G: p.Gray,
		})
	}
	return out
}
