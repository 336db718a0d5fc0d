package main

import (
	"strings"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	db := openTestDB(t)
	auth := NewAuth(db)

	id, token, err := auth.Register("pilot1", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id == 0 || token == "" {
		t.Fatal("expected player id and token")
	}

	gotID, username, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if gotID != id || username != "pilot1" {
		t.Errorf("token claims mismatch: %d %s", gotID, username)
	}

	loginID, loginToken, err := auth.Login("pilot1", "secret", "1.2.3.4")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginID != id || loginToken == "" {
		t.Error("login should return the same player")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := openTestDB(t)
	auth := NewAuth(db)
	auth.Register("pilot1", "secret")

	if _, _, err := auth.Login("pilot1", "wrong", "1.2.3.4"); err == nil {
		t.Error("wrong password should fail")
	}
	if _, _, err := auth.Login("nobody", "secret", "1.2.3.4"); err == nil {
		t.Error("unknown user should fail")
	}
}

func TestRegisterValidation(t *testing.T) {
	db := openTestDB(t)
	auth := NewAuth(db)

	if _, _, err := auth.Register("x", "secret"); err == nil {
		t.Error("too-short username should fail")
	}
	if _, _, err := auth.Register("pilot1", "abc"); err == nil {
		t.Error("too-short password should fail")
	}
	if _, _, err := auth.Register("pilot1", "secret"); err != nil {
		t.Fatalf("valid registration should pass: %v", err)
	}
	if _, _, err := auth.Register("pilot1", "secret"); err == nil {
		t.Error("duplicate username should fail")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	db := openTestDB(t)
	auth := NewAuth(db)

	if _, _, err := auth.ValidateToken("not-a-jwt"); err == nil {
		t.Error("garbage token should fail")
	}
}

func TestJWTSecretPersists(t *testing.T) {
	db := openTestDB(t)
	a1 := NewAuth(db)
	_, token, err := a1.Register("pilot1", "secret")
	if err != nil {
		t.Fatal(err)
	}

	// A second Auth over the same database validates tokens from the first
	a2 := NewAuth(db)
	if _, _, err := a2.ValidateToken(token); err != nil {
		t.Errorf("token should survive an auth restart: %v", err)
	}
}

func TestLoginRateLimit(t *testing.T) {
	db := openTestDB(t)
	auth := NewAuth(db)
	auth.Register("pilot1", "secret")

	for i := 0; i < maxLoginAttempts; i++ {
		auth.Login("pilot1", "wrong", "9.9.9.9")
	}
	_, _, err := auth.Login("pilot1", "secret", "9.9.9.9")
	if err == nil || !strings.Contains(err.Error(), "too many") {
		t.Errorf("expected rate limit error, got %v", err)
	}

	// Other IPs are unaffected
	if _, _, err := auth.Login("pilot1", "secret", "8.8.8.8"); err != nil {
		t.Errorf("different ip should still log in: %v", err)
	}
}

func TestGenerateGuestName(t *testing.T) {
	name := GenerateGuestName()
	if !strings.HasPrefix(name, "Pilot_") {
		t.Errorf("unexpected guest name %s", name)
	}
	if name == GenerateGuestName() && name == GenerateGuestName() {
		t.Error("guest names should vary")
	}
}
