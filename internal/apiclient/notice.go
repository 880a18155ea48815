// ABOUTME: Notices and the collaborator ports the client is constructed with
// ABOUTME: No-op implementations stand in when a collaborator is not supplied

package apiclient

import "context"

// Level is a notice severity.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notice is a one-shot user-facing message.
type Notice struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Notice texts shown by the failure policy.
const (
	MsgSessionExpired = "Session expired. Please login again."
	MsgForbidden      = "You do not have permission to perform this action"
	MsgServerError    = "Server error. Please try again later."
	MsgValidation     = "An error occurred"
	MsgNetwork        = "Network error. Please check your connection."
	MsgUnexpected     = "An unexpected error occurred"
)

// TokenSource exposes the caller's session to the client.
type TokenSource interface {
	// Token returns the bearer token, or "" when signed out.
	Token(ctx context.Context) string
	// Expire discards the session after the API rejected its token.
	Expire(ctx context.Context) error
}

// Notifier delivers notices to whoever is looking.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Navigator tracks the caller's current view.
type Navigator interface {
	OnLoginView(ctx context.Context) bool
	RedirectToLogin(ctx context.Context)
}

type noTokens struct{}

func (noTokens) Token(context.Context) string  { return "" }
func (noTokens) Expire(context.Context) error { return nil }

type noNotifier struct{}

func (noNotifier) Notify(context.Context, Notice) {}

type noNavigator struct{}

func (noNavigator) OnLoginView(context.Context) bool { return false }
func (noNavigator) RedirectToLogin(context.Context)  {}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notice)

func (f NotifierFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }
