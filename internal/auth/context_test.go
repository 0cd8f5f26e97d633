package auth

import (
	"context"
	"testing"
)

func TestWithAuthRoundTrip(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{
		UserID:      7,
		HouseholdID: 3,
		Role:        RoleAdmin,
		SessionID:   42,
	})

	ac, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected auth context")
	}
	if ac.UserID != 7 || ac.HouseholdID != 3 || ac.SessionID != 42 {
		t.Errorf("unexpected auth context: %+v", ac)
	}
	if !IsAdmin(ctx) {
		t.Error("expected admin")
	}
	if HouseholdID(ctx) != 3 {
		t.Errorf("HouseholdID = %d, want 3", HouseholdID(ctx))
	}
}

func TestEmptyContext(t *testing.T) {
	ctx := context.Background()

	if _, ok := FromContext(ctx); ok {
		t.Error("expected no auth context")
	}
	if HouseholdID(ctx) != 0 {
		t.Error("expected zero household id")
	}
	if UserID(ctx) != 0 {
		t.Error("expected zero user id")
	}
	if IsAdmin(ctx) {
		t.Error("expected not admin")
	}
}
