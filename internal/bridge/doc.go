// Package bridge connects the plugin host to the processes that render
// it over websockets.
//
// Two kinds of peer connect to the Server:
//
//   - The shell (role=shell) owns native windows, the screen, dialogs
//     and notifications. Shell turns it into view.Factory, view.Screen
//     and the host window itself.
//   - Content (role=content&surface=<id>) is one page: the UI of a
//     window (surface "window-<id>") or a plugin surface. Content sends
//     command messages and observed key events, and answers calls made
//     into it.
//
// Frames are JSON objects:
//
//	{"id": "...", "kind": "request", "method": "msg-trigger", "params": {...}, "sync": true}
//
// A msg-trigger request with sync set is dispatched blocking: the peer's
// later requests wait until it completes. Without sync the message is
// dispatched deferred and its response frame is written when the handler
// finishes, so responses arrive in completion order.
//
// POST /msg-trigger accepts a bare message and always uses the blocking
// convention.
package bridge
