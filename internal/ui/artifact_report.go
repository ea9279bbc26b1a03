package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/fatih/color"
)

const (
	createdLabelConstant         = "CREATED"
	removedLabelConstant         = "REMOVED"
	teardownLabelConstant        = "TEARDOWN"
	reportLineTemplateConstant   = "%s: %s\n"
	commandArgumentSeparator     = " "
	removeSubcommandNameConstant = "remove"
	rootFlagArgumentConstant     = "--root"
	configFlagArgumentConstant   = "--config"
	reportWriteErrorTemplate     = "unable to write report line: %w"
	emptyApplicationNameFallback = "mockscaffold"
)

// TeardownCommand describes the command that reaps a scaffold.
type TeardownCommand struct {
	ApplicationName       string
	ProjectRoot           string
	ConfigurationFilePath string
}

// String renders a shell-safe command line.
func (teardownCommand TeardownCommand) String() string {
	applicationName := strings.TrimSpace(teardownCommand.ApplicationName)
	if len(applicationName) == 0 {
		applicationName = emptyApplicationNameFallback
	}

	arguments := []string{shellescape.Quote(applicationName), removeSubcommandNameConstant}
	if configurationFilePath := strings.TrimSpace(teardownCommand.ConfigurationFilePath); len(configurationFilePath) > 0 {
		arguments = append(arguments, configFlagArgumentConstant, shellescape.Quote(configurationFilePath))
	}
	arguments = append(arguments, rootFlagArgumentConstant, shellescape.Quote(teardownCommand.ProjectRoot))
	return strings.Join(arguments, commandArgumentSeparator)
}

// ArtifactReporter prints scaffold artifacts one per line with a status label.
type ArtifactReporter struct {
	writer        io.Writer
	createdColor  *color.Color
	removedColor  *color.Color
	teardownColor *color.Color
}

// NewArtifactReporter constructs a reporter writing to writer. Labels are colorized only when colorize is true.
func NewArtifactReporter(writer io.Writer, colorize bool) *ArtifactReporter {
	if writer == nil {
		writer = io.Discard
	}

	reporter := &ArtifactReporter{
		writer:        writer,
		createdColor:  color.New(color.FgGreen, color.Bold),
		removedColor:  color.New(color.FgYellow, color.Bold),
		teardownColor: color.New(color.FgCyan),
	}
	for _, labelColor := range []*color.Color{reporter.createdColor, reporter.removedColor, reporter.teardownColor} {
		if colorize {
			labelColor.EnableColor()
		} else {
			labelColor.DisableColor()
		}
	}
	return reporter
}

// ReportCreated prints every created path.
func (reporter *ArtifactReporter) ReportCreated(paths []string) error {
	return reporter.reportPaths(reporter.createdColor, createdLabelConstant, paths)
}

// ReportRemoved prints every removed path.
func (reporter *ArtifactReporter) ReportRemoved(paths []string) error {
	return reporter.reportPaths(reporter.removedColor, removedLabelConstant, paths)
}

// ReportTeardown prints the command that removes the scaffold again.
func (reporter *ArtifactReporter) ReportTeardown(teardownCommand TeardownCommand) error {
	return reporter.writeLine(reporter.teardownColor, teardownLabelConstant, teardownCommand.String())
}

func (reporter *ArtifactReporter) reportPaths(labelColor *color.Color, label string, paths []string) error {
	for _, path := range paths {
		if writeError := reporter.writeLine(labelColor, label, path); writeError != nil {
			return writeError
		}
	}
	return nil
}

func (reporter *ArtifactReporter) writeLine(labelColor *color.Color, label string, value string) error {
	if _, writeError := fmt.Fprintf(reporter.writer, reportLineTemplateConstant, labelColor.Sprint(label), value); writeError != nil {
		return fmt.Errorf(reportWriteErrorTemplate, writeError)
	}
	return nil
}
