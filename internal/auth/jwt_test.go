package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIssueVerify_RoundTrip(t *testing.T) {
	m, err := NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, err := m.Issue("per:1", "9876543210")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Subject != "per:1" {
		t.Errorf("expected subject per:1, got %s", claims.Subject)
	}
	if claims.Phone != "9876543210" {
		t.Errorf("expected phone claim, got %s", claims.Phone)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	m1, _ := NewManager("secret-one", time.Hour)
	m2, _ := NewManager("secret-two", time.Hour)

	token, err := m1.Issue("per:1", "")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := m2.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	m, _ := NewManager("test-secret", -time.Minute)

	token, err := m.Issue("per:1", "")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	m, _ := NewManager("test-secret", time.Hour)

	if _, err := m.Verify("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestNewManager_RequiresSecret(t *testing.T) {
	if _, err := NewManager("", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestPersonIDContext(t *testing.T) {
	ctx := WithPersonID(context.Background(), "per:1")

	id, ok := PersonID(ctx)
	if !ok || id != "per:1" {
		t.Errorf("expected per:1, got %q (%v)", id, ok)
	}

	if _, ok := PersonID(context.Background()); ok {
		t.Error("expected no person on bare context")
	}
}
