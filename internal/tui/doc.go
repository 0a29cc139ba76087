// Package tui provides the terminal user interface for Stride runs.
//
// The dashboard subscribes to executor events through a Bridge, which
// converts the executor's synchronous listener callbacks into a channel
// the Bubble Tea event loop can consume. The executor never blocks on a
// slow terminal: when the bridge buffer is full, events are dropped.
package tui
