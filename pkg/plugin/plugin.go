// Package plugin defines the plugin lifecycle and the reporter registry.
package plugin

import (
	"context"
	"io"

	"firestige.xyz/wirecap/internal/core"
)

// Plugin is the base interface for all plugins.
type Plugin interface {
	Name() string
	Init(cfg map[string]any) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Reporter consumes decoded capture records.
type Reporter interface {
	Plugin
	Report(ctx context.Context, rec *core.Record) error
	Flush(ctx context.Context) error
}

// OutputSetter is implemented by reporters that write to a stream rather
// than a destination named in their options.
type OutputSetter interface {
	SetOutput(w io.Writer)
}
