package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nutqapp/nutq-backend/internal/types"
)

func TestTokenService_IssueVerifyRoundtrip(t *testing.T) {
	ts := NewTokenService(newTestLogger(t), "test-secret", time.Hour)
	actorID := uuid.New()

	token, err := ts.Issue(actorID, types.RoleSpecialist)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	gotID, gotRole, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if gotID != actorID {
		t.Fatalf("actor id: want %s, got %s", actorID, gotID)
	}
	if gotRole != types.RoleSpecialist {
		t.Fatalf("role: want %s, got %s", types.RoleSpecialist, gotRole)
	}
}

func TestTokenService_TamperedTokenRejected(t *testing.T) {
	ts := NewTokenService(newTestLogger(t), "test-secret", time.Hour)
	token, err := ts.Issue(uuid.New(), types.RoleParent)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	tampered := []byte(token)
	last := len(tampered) - 1
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}
	if _, _, err := ts.Verify(string(tampered)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_WrongSecretRejected(t *testing.T) {
	issuer := NewTokenService(newTestLogger(t), "secret-a", time.Hour)
	verifier := NewTokenService(newTestLogger(t), "secret-b", time.Hour)

	token, err := issuer.Issue(uuid.New(), types.RoleParent)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_ExpiredTokenRejected(t *testing.T) {
	ts := NewTokenService(newTestLogger(t), "test-secret", -time.Minute)
	token, err := ts.Issue(uuid.New(), types.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, _, err := ts.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

// Unknown role strings survive the roundtrip so the resolver can run its
// store-scan fallback on tokens minted by older releases.
func TestTokenService_UnknownRolePassesThrough(t *testing.T) {
	ts := NewTokenService(newTestLogger(t), "test-secret", time.Hour)
	token, err := ts.Issue(uuid.New(), types.Role("user"))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	_, gotRole, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if gotRole != types.Role("user") {
		t.Fatalf("role: want user, got %s", gotRole)
	}
}
