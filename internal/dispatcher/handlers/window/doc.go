// Package window provides handlers for window geometry, visibility and
// the sub-input overlay.
//
// Commands that act on "the current window" use the origin window
// resolved by the dispatcher. When the message names a window that no
// longer exists the command is a no-op.
package window
