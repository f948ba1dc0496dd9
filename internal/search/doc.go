// Package search ranks the features of installed plugins, and the
// installed desktop apps, against the text typed into the host search
// field.
//
// Literal trigger words are scored with a subsequence matcher that
// favours prefix hits, consecutive runs and word boundaries. Regex and
// catch-all triggers never outrank a literal hit; they are listed after
// them in a fixed order. App keywords are scored as literal triggers.
package search
