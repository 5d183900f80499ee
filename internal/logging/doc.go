// Package logging provides opt-in file-based logging with rotation for typeahead.
// When the --debug flag is set, JSON logs are written to ~/.typeahead/logs/
// so lookup dispatch, stale discards and backend failures can be traced.
//
// Interactive and MCP modes own the terminal, so they log to the file only
// (see SetupFileOnly). Without --debug, components fall back to slog.Default().
package logging
