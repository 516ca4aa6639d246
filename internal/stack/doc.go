// Package stack is the popup position registry. It keeps, for every
// (surface, position) key, the ordered list of visible popups, computes
// their target coordinates and re-flows a stack whenever a popup is added
// or removed.
package stack
