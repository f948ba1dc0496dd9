// Package lifecycle provides handlers for opening, closing, detaching and
// reattaching plugins, and for editing the current plugin's features.
package lifecycle
