// Package appctx carries the invocation context (API, UI or CLI) of a call
// through a context.Context.
package appctx

import (
	"context"
)

// AppContext identifies the logical entry point that started a call chain
type AppContext string

const (
	// API is set by the HTTP server for every inbound request
	API AppContext = "api"
	// UI is set by interactive front-ends
	UI AppContext = "ui"
	// CLI is set by command line entry points and is the fallback
	CLI AppContext = "cli"
)

type ctxKey struct{}

// With returns a copy of ctx carrying the given app context
func With(ctx context.Context, ac AppContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, ac)
}

// Resolve returns the app context carried by ctx, or CLI when none was set
func Resolve(ctx context.Context) AppContext {
	if ctx == nil {
		return CLI
	}
	if ac, ok := ctx.Value(ctxKey{}).(AppContext); ok && ac.Valid() {
		return ac
	}
	return CLI
}

// Valid reports whether the value is one of the known app contexts
func (a AppContext) Valid() bool {
	switch a {
	case API, UI, CLI:
		return true
	default:
		return false
	}
}

func (a AppContext) String() string {
	return string(a)
}
