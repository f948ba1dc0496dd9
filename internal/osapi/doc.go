// Package osapi implements the operating system collaborators of the
// plugin host: clipboard, well-known paths, shell actions, notifications,
// key synthesis and external program execution.
//
// Everything that shells out goes through a Supervisor, which tracks
// running programs so the host can stop them on shutdown. Each type takes
// the target platform ("darwin", "linux", "windows") so the command lines
// it builds can be tested on any machine.
package osapi
