// Package version contains information on the current version of the program.
// It is split from the main program for easy use.
package version

// Current is the string representing the current version of ictogen.
const Current = "0.1.0"

// ArtifactFormat is the version tag stamped into every generated-compiler
// artifact manifest. It is bumped whenever the on-disk layout of the
// serialized DFA/grammar blob changes in a way that would make an older
// ictogen unable to load it.
const ArtifactFormat = "1"
