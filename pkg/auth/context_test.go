package auth

import (
	"context"
	"testing"
)

func TestUserIDContext(t *testing.T) {
	ctx := WithUserID(context.Background(), "user-1")

	userID, ok := GetUserID(ctx)
	if !ok || userID != "user-1" {
		t.Errorf("GetUserID = (%q, %v), want (user-1, true)", userID, ok)
	}

	userID, err := RequireUserID(ctx)
	if err != nil || userID != "user-1" {
		t.Errorf("RequireUserID = (%q, %v)", userID, err)
	}
}

func TestUserIDContext_Missing(t *testing.T) {
	ctx := context.Background()

	if _, ok := GetUserID(ctx); ok {
		t.Error("GetUserID found a user in an empty context")
	}

	if _, err := RequireUserID(ctx); err == nil {
		t.Error("RequireUserID should fail on an empty context")
	}
}
