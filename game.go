package main

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	TickRate       = 60 // physics ticks per second
	BroadcastRate  = 30 // state broadcasts per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate

	maxPlayersPerSession = 8
	ScorePerAsteroid     = 10

	// Destruction burst, matching the client effect
	destroyParticles = 50
	destroySpeed     = 2.0
	destroyDuration  = 1.0
)

// Broadcaster interface for sending messages to clients
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Game holds the state for one session: the asteroid field, the collision
// grid built over it, and the players flying through it. The grid is owned
// exclusively by the game loop; a reload replaces field and grid wholesale,
// never mutates them under queries.
type Game struct {
	mu      sync.RWMutex
	cfg     Config
	players map[string]*Player
	clients map[string]Broadcaster

	asteroids []Asteroid
	grid      *UniformGrid
	particles *ParticlePool
	score     int
	phase     GamePhase

	tick    uint64
	running bool
	stop    chan struct{}

	sessionID string
	db        *DB
	analytics *Analytics
}

// NewGame creates a new Game in the lobby phase
func NewGame(sessionID string, cfg Config, db *DB, analytics *Analytics) *Game {
	return &Game{
		cfg:       cfg,
		players:   make(map[string]*Player),
		clients:   make(map[string]Broadcaster),
		particles: NewParticlePool(MaxParticles),
		phase:     PhaseLobby,
		stop:      make(chan struct{}),
		sessionID: sessionID,
		db:        db,
		analytics: analytics,
	}
}

// Run starts the game loop
func (g *Game) Run() {
	g.mu.Lock()
	g.running = true
	g.mu.Unlock()

	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.update()
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		g.running = false
		close(g.stop)
	}
}

// AddPlayer adds a new player to the session. The first join triggers the
// initial field load.
func (g *Game) AddPlayer(name string) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.players) >= maxPlayersPerSession {
		return nil
	}

	id := GenerateID(4)
	player := NewPlayer(id, name)
	g.players[id] = player

	if g.phase == PhaseLobby {
		g.reload()
	}
	return player
}

// RemovePlayer removes a player, persisting their run stats first
func (g *Game) RemovePlayer(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p, ok := g.players[id]; ok {
		g.persistRun(p)
	}
	delete(g.players, id)
	delete(g.clients, id)
}

// SetClient associates a broadcaster with a player and sends the current
// field snapshot so the client can start rendering.
func (g *Game) SetClient(playerID string, client Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[playerID] = client

	if g.grid != nil {
		client.SendJSON(Envelope{T: MsgField, Data: g.fieldSnapshot()})
	}
	client.SendJSON(Envelope{T: MsgPhaseChange, Data: PhaseMsg{Phase: int(g.phase)}})
}

// HasPlayer checks if a player is in this session
func (g *Game) HasPlayer(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.players[id]
	return ok
}

// PlayerCount returns the number of players
func (g *Game) PlayerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.players)
}

// Phase returns the current session phase
func (g *Game) Phase() GamePhase {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.phase
}

// Score returns the session score
func (g *Game) Score() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.score
}

// HandleInput processes input from a player
func (g *Game) HandleInput(playerID string, input ClientInput) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[playerID]
	if !ok {
		return
	}
	p.Yaw = input.Yaw
	p.Pitch = Clamp(input.Pitch, -maxPitch, maxPitch)
	p.Forward = input.Forward
	p.Back = input.Back
	p.Left = input.Left
	p.Right = input.Right
	p.Ascend = input.Ascend
	p.Descend = input.Descend
	p.Firing = input.Fire
}

// HandlePause pauses gameplay
func (g *Game) HandlePause() {
	g.setPhase(PhasePlaying, PhasePaused)
}

// HandleResume resumes gameplay
func (g *Game) HandleResume() {
	g.setPhase(PhasePaused, PhasePlaying)
}

func (g *Game) setPhase(from, to GamePhase) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != from {
		return
	}
	g.phase = to
	g.broadcastMsg(Envelope{T: MsgPhaseChange, Data: PhaseMsg{Phase: int(to)}})
}

// HandleReload regenerates the field (the "New Game" action)
func (g *Game) HandleReload() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase == PhaseLoading {
		return
	}
	for _, p := range g.players {
		g.persistRun(p)
	}
	g.reload()
}

// reload generates a fresh field and builds a new grid over it. Callers hold
// g.mu: no query can observe a half-built grid.
func (g *Game) reload() {
	g.phase = PhaseLoading
	g.broadcastMsg(Envelope{T: MsgPhaseChange, Data: PhaseMsg{Phase: int(PhaseLoading)}})

	extent := g.cfg.Field.MaxExtent(g.cfg.Grid.CellSizeX)
	log.Printf("game %s: field bounds min(%.2f) max(%.2f)", g.sessionID, -extent, extent)
	g.installField(GenerateField(g.cfg.Field), extent)

	g.particles.Reset()
	g.score = 0
	for _, p := range g.players {
		p.ResetRun()
	}

	g.phase = PhasePlaying
	g.broadcastMsg(Envelope{T: MsgField, Data: g.fieldSnapshot()})
	g.broadcastMsg(Envelope{T: MsgPhaseChange, Data: PhaseMsg{Phase: int(PhasePlaying)}})

	if g.analytics != nil {
		g.analytics.Track(EvtFieldReload, 0, g.sessionID, "")
	}
}

// installField swaps in a field and builds a fresh grid over it (mu held)
func (g *Game) installField(asteroids []Asteroid, extent float64) {
	g.asteroids = asteroids
	g.grid = NewUniformGrid(
		Vector3{-extent, -extent, -extent},
		Vector3{extent, extent, extent},
		g.cfg.Grid.CellSize())
	g.grid.Build(g.asteroids)
}

// update runs one game tick
func (g *Game) update() {
	g.mu.Lock()
	defer g.mu.Unlock()

	dt := 1.0 / float64(TickRate)
	g.tick++

	if g.phase == PhasePlaying {
		for i := range g.asteroids {
			g.asteroids[i].Update(dt)
		}
		g.particles.Update(dt)

		for _, p := range g.players {
			prev := p.Position
			p.Update(dt)
			if !p.Bouncing {
				g.checkPlayerCollision(p, prev)
			}
			if p.CanFire() {
				g.fireRay(p)
				p.FireCD = FireCooldown
			}
		}
	}

	if g.tick%BroadcastEvery == 0 {
		g.broadcastState()
	}
}

// checkPlayerCollision runs the broad-phase grid query around the player and
// the sphere narrow phase on candidates; a hit bounces the player back to the
// pre-move position.
func (g *Game) checkPlayerCollision(p *Player, prev Vector3) {
	if g.grid == nil {
		log.Printf("game %s: collision grid nil, skipping player collision", g.sessionID)
		return
	}
	for _, idx := range g.grid.Query(p.Position) {
		// Candidate indices are validated against the current field; the grid
		// does not bounds-check them itself
		if idx < 0 || idx >= len(g.asteroids) {
			continue
		}
		ast := &g.asteroids[idx]
		if !ast.Active {
			continue
		}
		if !CheckSphereCollision(p.Position, PlayerRadius, ast.Position, ast.CollisionRadius) {
			continue
		}
		away := p.Position.Sub(ast.Position)
		if away.LengthSqr() < 1e-9 {
			// Degenerate overlap at the asteroid center, push up
			away = Vector3{0, 1, 0}
		}
		p.StartBounce(away.Normalize())
		p.Position = prev
		return
	}
}

// fireRay resolves one shot: broad phase along the forward ray, then exact
// ray-sphere tests to pick the closest actual hit.
func (g *Game) fireRay(p *Player) {
	if g.grid == nil {
		log.Printf("game %s: collision grid nil, skipping raycast", g.sessionID)
		return
	}

	origin := p.Position
	dir := p.Front()

	closest := -1
	closestDist := HitMaxDistance + 1
	for _, idx := range g.grid.QueryRay(origin, dir, HitMaxDistance) {
		if idx < 0 || idx >= len(g.asteroids) {
			continue
		}
		ast := &g.asteroids[idx]
		if !ast.Active {
			continue
		}
		hit := RaySphereIntersect(origin, dir, ast.Position, ast.CollisionRadius)
		if hit.Hit && hit.Distance <= HitMaxDistance && hit.Distance < closestDist {
			closest = idx
			closestDist = hit.Distance
		}
	}
	if closest < 0 {
		return
	}

	ast := &g.asteroids[closest]
	ast.HitPoints--
	ast.Shaking = true
	ast.ShakeTimer = ShakeDuration

	g.broadcastMsg(Envelope{T: MsgHit, Data: HitMsg{
		Index:    closest,
		ID:       ast.ID,
		HP:       ast.HitPoints,
		Distance: closestDist,
		By:       p.ID,
	}})

	if ast.HitPoints <= 0 {
		// Deactivated, not removed: the asteroid stays in the grid until the
		// next reload and every query result re-checks Active
		ast.Active = false
		g.score += ScorePerAsteroid
		p.Score += ScorePerAsteroid
		p.Destroyed++
		g.particles.Emit(ast.Position, destroyParticles, destroySpeed, destroyDuration, ast.Gray)

		g.broadcastMsg(Envelope{T: MsgDestroyed, Data: DestroyedMsg{
			Index: closest,
			ID:    ast.ID,
			By:    p.ID,
			Score: g.score,
		}})

		if g.analytics != nil {
			g.analytics.Track(EvtAsteroidDestroyed, p.AuthPlayerID, g.sessionID, "")
		}
	}
}

// fieldSnapshot converts the asteroid slice to protocol states (mu held)
func (g *Game) fieldSnapshot() FieldMsg {
	states := make([]AsteroidState, 0, len(g.asteroids))
	for i := range g.asteroids {
		a := &g.asteroids[i]
		states = append(states, AsteroidState{
			ID:     a.ID,
			X:      a.Position.X,
			Y:      a.Position.Y,
			Z:      a.Position.Z,
			Radius: a.CollisionRadius,
			AxisX:  a.RotationAxis.X,
			AxisY:  a.RotationAxis.Y,
			AxisZ:  a.RotationAxis.Z,
			Angle:  a.RotationAngle,
			Speed:  a.RotationSpeed,
			Size:   a.SizeMult,
			Gray:   a.Gray,
			HP:     a.HitPoints,
			Active: a.Active,
		})
	}
	return FieldMsg{
		Asteroids: states,
		Extent:    g.cfg.Field.MaxExtent(g.cfg.Grid.CellSizeX),
	}
}

// persistRun writes a finished run's stats for an authenticated player (mu held)
func (g *Game) persistRun(p *Player) {
	if g.db == nil || p.AuthPlayerID == 0 {
		return
	}
	playtime := time.Since(p.JoinedAt).Seconds()
	p.JoinedAt = time.Now()

	prevLevel := 0
	if s, err := g.db.GetStats(p.AuthPlayerID); err == nil && s != nil {
		prevLevel = s.Level
	}

	_, level, err := g.db.UpdateStatsAfterRun(p.AuthPlayerID, p.Destroyed, p.Score, playtime)
	if err != nil {
		log.Printf("game %s: persisting run for %s: %v", g.sessionID, p.ID, err)
		return
	}
	if level > prevLevel && g.analytics != nil {
		g.analytics.Track(EvtLevelUp, p.AuthPlayerID, g.sessionID, "")
	}

	unlocked := CheckAchievements(g.db, p.AuthPlayerID, p.Destroyed, p.Score)
	for _, def := range unlocked {
		if client, ok := g.clients[p.ID]; ok {
			client.SendJSON(Envelope{T: MsgAchievement, Data: AchievementMsg{
				ID:          def.ID,
				Name:        def.Name,
				Description: def.Description,
			}})
		}
		if g.analytics != nil {
			g.analytics.Track(EvtAchievement, p.AuthPlayerID, g.sessionID, `{"id":"`+def.ID+`"}`)
		}
	}
}

// broadcastState sends the msgpack-encoded tick state to all clients (mu held)
func (g *Game) broadcastState() {
	state := GameState{
		Tick:      g.tick,
		Phase:     int(g.phase),
		Score:     g.score,
		Players:   make([]PlayerState, 0, len(g.players)),
		Particles: g.particles.Snapshot(),
	}
	for _, p := range g.players {
		state.Players = append(state.Players, p.ToState())
	}

	data, err := msgpack.Marshal(state)
	if err != nil {
		log.Printf("game %s: state marshal: %v", g.sessionID, err)
		return
	}
	for _, client := range g.clients {
		client.SendBinary(data)
	}
}

// broadcastMsg sends a JSON message to all clients in the session (mu held)
func (g *Game) broadcastMsg(msg Envelope) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	for _, client := range g.clients {
		if c, ok := client.(*Client); ok {
			c.SendRaw(data)
		} else {
			client.SendJSON(msg)
		}
	}
}
