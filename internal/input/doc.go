// Package input routes keyboard input between the host window and plugin
// content.
//
// Two paths are handled here:
//
//   - Observed input: key events seen on the host window (or on the
//     surface attached to it) are checked for the reserved cancel
//     shortcut. A bare Escape closes the current plugin, or hides the
//     host window when no plugin is open. Everything else passes through
//     untouched.
//   - Synthetic input: plugins ask for key presses to be synthesized
//     into the active surface, either by logical key name with optional
//     modifiers or by numeric key code.
//
// Synthesized events are delivered through a Sink. SurfaceSink delivers
// them into the surface content itself; other sinks may drive the
// operating system instead.
package input
