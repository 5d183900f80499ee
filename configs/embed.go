// Package configs embeds the configuration templates written by
// `typeahead config init`.
//
// Template files:
//   - user-config.example.yaml: machine-wide settings written to
//     ~/.config/typeahead/config.yaml
//   - project-config.example.yaml: per-directory settings written to
//     .typeahead.yaml
//
// Every key in the templates is optional; absent keys keep the defaults
// from internal/config NewConfig.
package configs

import _ "embed"

// UserConfigTemplate is written by `typeahead config init`.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is written by `typeahead config init --project`.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
