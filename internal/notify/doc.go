// Package notify is the entry point for showing popups. A Manager resolves
// the target surface of each notification, creates its Shell, registers it
// with the stack registry and drives rendering from the animation loop.
package notify
