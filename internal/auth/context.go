package auth

import "context"

// Membership roles. The user who registers a household is its admin;
// everyone who joins afterwards is a member.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type contextKey struct{}

// AuthContext carries the authenticated caller's identity and household
// scope. It is re-derived from the session on every request; nothing in it
// is cached across requests.
type AuthContext struct {
	UserID      int64
	HouseholdID int64
	Role        string
	SessionID   int64
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

// HouseholdID returns the caller's active household, or zero when the
// context carries no session. Handlers behind RequireAuth never see zero.
func HouseholdID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.HouseholdID
}

func UserID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.UserID
}

func IsAdmin(ctx context.Context) bool {
	ac, ok := FromContext(ctx)
	return ok && ac.Role == RoleAdmin
}
