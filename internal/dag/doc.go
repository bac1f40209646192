// Package dag orders named items by their declared dependencies.
//
// Ordering is an iterative fixed-point expansion: items without dependencies
// are scheduled first, then repeated scans in input order append every item
// whose dependencies are all scheduled. A scan that adds nothing ends the
// expansion, and every item still unscheduled is reported together. Cycles,
// items blocked behind a cycle, and references to unknown items all surface
// through the same UnschedulableError.
package dag
