// Package preflight checks that typeahead can run with a given
// configuration before a session starts.
//
// The checks cover:
//   - Data directory write access and free space
//   - The configured backend (words file, on-disk index or remote server)
//   - The telemetry database
//   - Whether stdout is a terminal (interactive or line mode)
//
// Use the Checker type to run them:
//
//	checker := preflight.New(preflight.WithOutput(os.Stdout))
//	results := checker.RunAll(ctx, cfg)
//	if checker.HasCriticalFailures(results) {
//	    // Handle failures
//	}
package preflight
