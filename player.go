package main

import (
	"math"
	"time"
)

const (
	PlayerRadius = 0.5
	MoveSpeed    = 9.0 // world units/s

	BounceDuration     = 0.4  // seconds the bounce-back lasts
	InitialBounceSpeed = 10.0 // world units/s at bounce start

	FireCooldown   = 0.25 // seconds between shots
	HitMaxDistance = 50.0 // max distance a shot can reach

	// Pitch stops just short of vertical to keep the forward vector stable
	maxPitch = math.Pi/2 - 0.01
)

// Player is one connected pilot flying through the field
type Player struct {
	ID   string
	Name string

	Position   Vector3
	Yaw, Pitch float64 // radians

	// Held movement keys from the latest input
	Forward, Back   bool
	Left, Right     bool
	Ascend, Descend bool
	Firing          bool

	FireCD float64

	// Bounce-back state after colliding with an asteroid
	Bouncing    bool
	BounceTimer float64
	BounceDir   Vector3

	Score     int
	Destroyed int
	JoinedAt  time.Time

	AuthPlayerID int64 // 0 = guest
}

// NewPlayer creates a player at the standard spawn point
func NewPlayer(id, name string) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		Position: Vector3{0, 2, 5},
		Yaw:      math.Pi, // facing -Z, toward the field center
		JoinedAt: time.Now(),
	}
}

// Front returns the unit forward vector from yaw/pitch
func (p *Player) Front() Vector3 {
	return Vector3{
		math.Sin(p.Yaw) * math.Cos(p.Pitch),
		math.Sin(p.Pitch),
		math.Cos(p.Yaw) * math.Cos(p.Pitch),
	}.Normalize()
}

// Update advances the player one tick: either the decaying bounce-back or
// free movement from the held keys.
func (p *Player) Update(dt float64) {
	if p.FireCD > 0 {
		p.FireCD -= dt
	}

	if p.Bouncing {
		p.BounceTimer -= dt
		if p.BounceTimer <= 0 {
			p.Bouncing = false
			return
		}
		decay := p.BounceTimer / BounceDuration
		p.Position = p.Position.Add(p.BounceDir.Scale(InitialBounceSpeed * decay * dt))
		return
	}

	front := p.Front()
	worldUp := Vector3{0, 1, 0}
	right := front.Cross(worldUp).Normalize()

	var move Vector3
	if p.Forward {
		move = move.Add(front)
	}
	if p.Back {
		move = move.Sub(front)
	}
	if p.Right {
		move = move.Add(right)
	}
	if p.Left {
		move = move.Sub(right)
	}
	if p.Ascend {
		move.Y += 1
	}
	if p.Descend {
		move.Y -= 1
	}

	if move.LengthSqr() > 0 {
		p.Position = p.Position.Add(move.Normalize().Scale(MoveSpeed * dt))
	}
}

// StartBounce pushes the player away from a collision along dir
func (p *Player) StartBounce(dir Vector3) {
	p.Bouncing = true
	p.BounceTimer = BounceDuration
	p.BounceDir = dir
}

// CanFire returns true if the player can shoot this tick
func (p *Player) CanFire() bool {
	return p.Firing && p.FireCD <= 0 && !p.Bouncing
}

// ResetRun resets per-run state for a fresh field
func (p *Player) ResetRun() {
	p.Position = Vector3{0, 2, 5}
	p.Bouncing = false
	p.BounceTimer = 0
	p.Score = 0
	p.Destroyed = 0
}

// ToState converts to protocol state
func (p *Player) ToState() PlayerState {
	return PlayerState{
		ID:       p.ID,
		Name:     p.Name,
		X:        p.Position.X,
		Y:        p.Position.Y,
		Z:        p.Position.Z,
		Yaw:      p.Yaw,
		Pitch:    p.Pitch,
		Score:    p.Score,
		Bouncing: p.Bouncing,
	}
}
