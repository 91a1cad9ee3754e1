// Package process ties external converter processes to their context so a
// cancelled or timed-out conversion leaves no children behind.
package process
