// Package solcover serializes coverage tool configuration values into the
// CommonJS module format the coverage plugin loads from a project root, and
// reads such modules back.
package solcover
