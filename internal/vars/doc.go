// Package vars resolves the ask variables declared by jobs.
//
// A variable is looked up in a fixed order: forced-empty mode, the process
// environment, NAME=value pairs from the command line, pairs from the ask
// file, and finally an interactive prompt. The first source that supplies a
// value wins, even when that value is empty. Names ending in _SECURE are
// looked up without the suffix and prompt with masked input.
package vars
