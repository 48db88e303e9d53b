package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestUserIDRoundTrip(t *testing.T) {
	id := uuid.New()
	ctx := WithUserID(context.Background(), id)

	got, ok := UserIDFromCtx(ctx)
	if !ok {
		t.Fatal("expected user id to be present")
	}
	if got != id {
		t.Errorf("expected %v, got %v", id, got)
	}
}

func TestUserIDMissing(t *testing.T) {
	if _, ok := UserIDFromCtx(context.Background()); ok {
		t.Error("expected no user id in empty context")
	}
}

func TestUserIDNilUUID(t *testing.T) {
	ctx := WithUserID(context.Background(), uuid.Nil)
	if _, ok := UserIDFromCtx(ctx); ok {
		t.Error("expected nil UUID to be treated as absent")
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := RequestIDFromCtx(ctx); got != "req-123" {
		t.Errorf("expected req-123, got %q", got)
	}
	if got := RequestIDFromCtx(context.Background()); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}
