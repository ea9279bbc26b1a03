// Package scaffold builds and reaps disposable Truffle mock projects used to
// exercise a coverage plugin end to end.
//
// Builder copies the template tree, the contract sources, and the test into
// the working tree and writes the deploy script, the build configuration, and
// the coverage configuration. Reaper removes everything a Builder can write
// together with the coverage output of a run. CommandBuilder exposes both
// through Cobra commands.
package scaffold
