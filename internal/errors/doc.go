// Package errors provides structured, actionable error messages for the
// runtime and its CLI.
//
// Each error has a unique code (e.g., "E010") that maps to a registered
// template with a short message, a longer explanation, and a documentation
// link. Callers enrich an error at the site that raises it:
//
//	return errors.New("E120").
//	    Wrap(err).
//	    WithSuggestion("check qwik.json for trailing commas")
//
// # Error Categories
//
//   - runtime: task execution errors (untrackable target, unresolved symbol)
//   - resume: trigger and scheduler errors in the client environment
//   - config: qwik.json errors
//   - cli: command-line errors
package errors
