// Package execs wraps subprocess execution for git invocations, with
// OpenTelemetry spans and structured logging around each command.
package execs
