// Package cli constructs the mockscaffold command-line interface, wiring the
// Cobra command hierarchy, the configuration loader, and structured logging.
// It exposes helpers to build application instances and to execute the
// install, install-multiple, and remove commands.
package cli
