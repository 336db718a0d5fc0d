package main

import "testing"

func TestHubConnectionLimits(t *testing.T) {
	h := NewHub(testConfig(), nil, nil)

	for i := 0; i < maxConnsPerIP; i++ {
		if !h.CanAccept("1.1.1.1") {
			t.Fatalf("connection %d from one ip should be accepted", i)
		}
		h.TrackConnect("1.1.1.1")
	}
	if h.CanAccept("1.1.1.1") {
		t.Error("per-ip limit should block further connections")
	}
	if !h.CanAccept("2.2.2.2") {
		t.Error("other ips should still be accepted")
	}

	h.TrackDisconnect("1.1.1.1")
	if !h.CanAccept("1.1.1.1") {
		t.Error("disconnect should free a slot")
	}
	if h.TotalConns() != maxConnsPerIP-1 {
		t.Errorf("expected %d tracked conns, got %d", maxConnsPerIP-1, h.TotalConns())
	}
}

func TestHubOnlineTracking(t *testing.T) {
	h := NewHub(testConfig(), nil, nil)
	c := &Client{}

	h.SetOnline(42, c)
	if !h.IsOnline(42) {
		t.Error("player 42 should be online")
	}
	if h.IsOnline(7) {
		t.Error("player 7 should not be online")
	}

	h.SetOffline(42)
	if h.IsOnline(42) {
		t.Error("player 42 should be offline after removal")
	}
}

func TestSessionManagerLifecycle(t *testing.T) {
	sm := NewSessionManager(testConfig(), nil, nil)

	sess := sm.CreateSession("Alpha")
	if sess == nil {
		t.Fatal("expected session")
	}
	defer sess.Game.Stop()

	if sm.GetSession(sess.ID) != sess {
		t.Error("lookup should return the session")
	}
	if sm.GetSession("bogus") != nil {
		t.Error("unknown id should return nil")
	}

	list := sm.ListSessions()
	if len(list) != 1 || list[0].Name != "Alpha" {
		t.Errorf("unexpected session list %v", list)
	}

	// Removing the last player tears the session down
	p := sess.Game.AddPlayer("Solo")
	sm.RemovePlayer(sess.ID, p.ID)
	if sm.GetSession(sess.ID) != nil {
		t.Error("empty session should be removed")
	}
	if sm.SessionCount() != 0 {
		t.Errorf("expected 0 sessions, got %d", sm.SessionCount())
	}
}
