package receipt

import (
	"errors"
	"strings"
	"testing"
	"time"

	"bombsim/pkg/core"
)

var victory = core.RoundResult{
	Level:         10,
	Outcome:       core.OutcomeVictory,
	Score:         25000,
	Bonus:         3400,
	Stars:         3,
	TimeRemaining: 41.5,
	Lives:         2,
}

func TestSignVerify(t *testing.T) {
	s := NewSigner("bombsim", time.Hour, "secret")
	token, err := s.Sign(victory, "run-1")
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}

	claims, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if claims.Score != 25000 || claims.Outcome != "victory" || claims.Stars != 3 || claims.Subject != "run-1" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejects(t *testing.T) {
	s := NewSigner("bombsim", time.Hour, "secret")
	token, err := s.Sign(victory, "run-1")
	if err != nil {
		t.Fatal(err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	expired := NewSigner("bombsim", time.Minute, "secret")
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _ := expired.Sign(victory, "run-1")

	foreign, _ := NewSigner("someone-else", time.Hour, "secret").Sign(victory, "run-1")
	otherKey, _ := NewSigner("bombsim", time.Hour, "other").Sign(victory, "run-1")

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "tampered payload", token: tampered},
		{name: "expired", token: old},
		{name: "wrong issuer", token: foreign},
		{name: "wrong key", token: otherKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestDevSecretFallback(t *testing.T) {
	t.Setenv(SecretEnv, "")
	a := NewSigner("bombsim", 0, SecretFromEnv())
	b := NewSigner("bombsim", 0, devSecret)

	token, err := a.Sign(victory, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Verify(token); err != nil {
		t.Errorf("empty secret should fall back to the dev key: %v", err)
	}
}
