package mcp

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

// TestUserIDFromContextDefault verifies the nil user ID when no value is set
// in the context.
func TestUserIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := UserIDFromContext(ctx); id != uuid.Nil {
		t.Errorf("UserIDFromContext(empty) = %s, want nil UUID", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	want := uuid.New()
	ctx := WithUserID(context.Background(), want)
	if id := UserIDFromContext(ctx); id != want {
		t.Errorf("UserIDFromContext = %s, want %s", id, want)
	}
}
