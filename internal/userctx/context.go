package userctx

import (
	"context"
	"time"
)

type contextKey string

const (
	userIDContextKey   contextKey = "user_id"
	locationContextKey contextKey = "location"
)

// DefaultOwnerID owns the diary when authentication is disabled.
const DefaultOwnerID = "default"

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok
}

// OwnerID returns the authenticated user or DefaultOwnerID.
func OwnerID(ctx context.Context) string {
	if userID, ok := GetUserID(ctx); ok && userID != "" {
		return userID
	}
	return DefaultOwnerID
}

func WithLocation(ctx context.Context, loc *time.Location) context.Context {
	return context.WithValue(ctx, locationContextKey, loc)
}

// Location returns the caller's time zone, or nil when none was supplied.
func Location(ctx context.Context) *time.Location {
	loc, _ := ctx.Value(locationContextKey).(*time.Location)
	return loc
}
