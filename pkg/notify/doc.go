// Package notify provides ports.Notifier sinks: structured log lines, coloured
// terminal toasts, and a fan-out over several sinks.
package notify
