package main

// GamePhase is the session lifecycle: the original single-player menu state
// machine, driven by messages instead of keys.
type GamePhase int

const (
	PhaseLobby   GamePhase = 0 // session created, no field yet
	PhaseLoading GamePhase = 1 // generating field and building the grid
	PhasePlaying GamePhase = 2
	PhasePaused  GamePhase = 3
)

func (p GamePhase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseLoading:
		return "loading"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	}
	return "unknown"
}
