// Package submission drives the submit lifecycle of a form:
//
//	idle → validating → (invalid: idle) | submitting → succeeded | failed
//
// A Controller validates the whole form, marks its surface busy, dispatches
// the payload through a Transport on a goroutine and renders exactly one
// terminal panel when the request settles. The busy state is restored on
// every path. At most one attempt per controller is in flight; a second
// Submit while submitting fails with ErrInFlight.
//
// Simulation mode swaps the transport for SimulatedTransport, which waits a
// fixed latency on the controller's clock and always succeeds.
package submission
