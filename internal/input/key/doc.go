// Package key defines keyboard events exchanged with plugin surfaces.
//
// Events are produced from three sources: host windows forwarding key-down
// events observed in content, browser keyCodes carried in command
// payloads (DecodeKeyCode), and terminal input (FromTcell). Logical key
// names used by synthetic input are resolved with Lookup.
package key
