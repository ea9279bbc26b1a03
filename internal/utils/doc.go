// Package utils holds the ambient plumbing shared by the CLI commands.
//
// ConfigurationLoader layers embedded defaults, an optional configuration file,
// and prefixed environment variables through Viper. LoggerFactory builds zap
// loggers in JSON or console encodings. CommandContextAccessor carries the
// resolved configuration file path through Cobra command contexts.
package utils
