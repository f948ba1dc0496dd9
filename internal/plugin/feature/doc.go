// Package feature holds the per-plugin list of invocable commands.
//
// All operations are pure: they return new slices and never mutate their
// input, so a descriptor observed by one goroutine is not affected by a
// later Add or Remove performed on behalf of another.
package feature
