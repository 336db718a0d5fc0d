package main

import "encoding/json"

// Client -> Server message types
const (
	MsgJoin     = "join"
	MsgLeave    = "leave"
	MsgInput    = "input"
	MsgCreate   = "create" // create session
	MsgList     = "list"   // list sessions
	MsgCheck    = "check"  // check if session exists
	MsgPause    = "pause"
	MsgResume   = "resume"
	MsgReload   = "reload" // regenerate the field (new game)
	MsgRegister    = "register"
	MsgLogin       = "login"
	MsgAuth        = "auth" // token re-auth
	MsgProfile     = "profile"
	MsgLeaderboard = "leaderboard"
)

// Server -> Client message types
const (
	MsgState       = "state" // binary msgpack broadcast
	MsgField       = "field" // full asteroid field snapshot
	MsgWelcome     = "welcome"
	MsgSessions    = "sessions"
	MsgJoined      = "joined"
	MsgCreated     = "created"
	MsgChecked     = "checked"
	MsgPhaseChange = "phase"
	MsgHit         = "hit"
	MsgDestroyed   = "destroyed"
	MsgError       = "error"
	MsgAuthOK          = "auth_ok"
	MsgProfileData     = "profile_data"
	MsgAchievement     = "achievement"
	MsgLeaderboardData = "leaderboard_data"
)

// Envelope wraps all outgoing JSON messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages — json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// ClientInput is sent by the client at 20Hz
type ClientInput struct {
	Yaw     float64 `json:"yaw"`
	Pitch   float64 `json:"pitch"`
	Forward bool    `json:"f,omitempty"`
	Back    bool    `json:"b,omitempty"`
	Left    bool    `json:"l,omitempty"`
	Right   bool    `json:"r,omitempty"`
	Ascend  bool    `json:"u,omitempty"`
	Descend bool    `json:"dn,omitempty"`
	Fire    bool    `json:"fire,omitempty"`
}

// JoinMsg is sent when a player wants to join a session
type JoinMsg struct {
	Name      string `json:"name"`
	SessionID string `json:"sid"`
}

// CreateMsg is sent when a player wants to create a session
type CreateMsg struct {
	Name        string `json:"name"`
	SessionName string `json:"sname"`
}

// CheckMsg asks whether a session exists
type CheckMsg struct {
	SID string `json:"sid"`
}

// CheckedMsg is the response to a session check
type CheckedMsg struct {
	SID     string `json:"sid"`
	Exists  bool   `json:"exists"`
	Name    string `json:"name,omitempty"`
	Players int    `json:"players,omitempty"`
}

// PlayerState is broadcast per player each state tick
type PlayerState struct {
	ID       string  `json:"id" msgpack:"id"`
	Name     string  `json:"n" msgpack:"n"`
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	Z        float64 `json:"z" msgpack:"z"`
	Yaw      float64 `json:"yw" msgpack:"yw"`
	Pitch    float64 `json:"pt" msgpack:"pt"`
	Score    int     `json:"sc" msgpack:"sc"`
	Bouncing bool    `json:"bn,omitempty" msgpack:"bn"`
}

// ParticleState is one debris fleck in the state broadcast
type ParticleState struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	Z float64 `json:"z" msgpack:"z"`
	G uint8   `json:"g" msgpack:"g"`
}

// GameState is the per-tick broadcast, msgpack-encoded on the wire
type GameState struct {
	Tick      uint64          `json:"tick" msgpack:"tick"`
	Phase     int             `json:"ph" msgpack:"ph"`
	Score     int             `json:"sc" msgpack:"sc"`
	Players   []PlayerState   `json:"p" msgpack:"p"`
	Particles []ParticleState `json:"px" msgpack:"px"`
}

// AsteroidState describes one asteroid in the field snapshot. Rotation
// parameters are included so clients animate locally between snapshots.
type AsteroidState struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Radius float64 `json:"cr"`
	AxisX  float64 `json:"ax"`
	AxisY  float64 `json:"ay"`
	AxisZ  float64 `json:"az"`
	Angle  float64 `json:"ra"`
	Speed  float64 `json:"rs"`
	Size   float64 `json:"sz"`
	Gray   uint8   `json:"g"`
	HP     int     `json:"hp"`
	Active bool    `json:"a"`
}

// FieldMsg is the full field snapshot sent on join and after a reload
type FieldMsg struct {
	Asteroids []AsteroidState `json:"asteroids"`
	Extent    float64         `json:"extent"` // world half-extent of the indexed region
}

// WelcomeMsg is sent to a player when they join
type WelcomeMsg struct {
	ID string `json:"id"`
}

// PhaseMsg announces a session phase change
type PhaseMsg struct {
	Phase int `json:"ph"`
}

// HitMsg announces a shot landing on an asteroid
type HitMsg struct {
	Index    int     `json:"i"`
	ID       string  `json:"id"`
	HP       int     `json:"hp"`
	Distance float64 `json:"d"`
	By       string  `json:"by"`
}

// DestroyedMsg announces an asteroid destruction
type DestroyedMsg struct {
	Index int    `json:"i"`
	ID    string `json:"id"`
	By    string `json:"by"`
	Score int    `json:"sc"` // session score after the award
}

// SessionInfo is used in the session list
type SessionInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Players int    `json:"players"`
}

// ErrorMsg sends an error to the client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// RegisterMsg creates an account
type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginMsg authenticates with credentials
type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthMsg authenticates with a previously issued token
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms authentication
type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID int64  `json:"pid"`
}

// LeaderboardMsg requests the top players
type LeaderboardMsg struct {
	By    string `json:"by"` // destroyed, best_score, level, xp
	Limit int    `json:"limit"`
}

// RunInfo is one entry of a player's recent run history
type RunInfo struct {
	Score     int     `json:"sc"`
	Destroyed int     `json:"d"`
	Duration  float64 `json:"t"`
}

// ProfileDataMsg returns persistent stats for the authenticated player
type ProfileDataMsg struct {
	Username  string    `json:"username"`
	Level     int       `json:"level"`
	XP        int       `json:"xp"`
	Destroyed int       `json:"destroyed"`
	BestScore int       `json:"best_score"`
	Runs      int       `json:"runs"`
	Playtime  float64   `json:"playtime"`
	Recent    []RunInfo `json:"recent,omitempty"`
}

// AchievementMsg announces a newly unlocked achievement
type AchievementMsg struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"desc"`
}
