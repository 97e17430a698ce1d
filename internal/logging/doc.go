// Package logging configures the logrus loggers used by the CLI and server.
package logging
