// Package ui provides helpers for formatting human-readable console output.
//
// ArtifactReporter lists the paths a scaffold created or removed so that test
// authors can see the mock project at a glance, while detailed telemetry keeps
// flowing through structured loggers.
package ui
