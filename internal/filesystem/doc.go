// Package filesystem wraps the operating system primitives used to build and
// reap scaffolds behind a stub-friendly interface, and provides recursive copy
// helpers on top of it.
package filesystem
