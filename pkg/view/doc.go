// Package view models the presentation state of a single form: per-field
// markers and inline error nodes, the busy indicator on the submit control,
// the form's visibility and the success/error panels attached next to it.
//
// Form is the in-memory surface the validator and the submission controller
// mutate; renderers read it through Snapshot. All methods are safe for
// concurrent use because submission outcomes and panel timers arrive on other
// goroutines.
package view
