// Package widgets contains dumb render primitives.
//
// Allowed here:
// - stateless drawing helpers (titled panes, the alert card, the popup overlay compositor)
//
// Not allowed here:
// - key handling, queue state, or anything that talks to the alert manager
package widgets
