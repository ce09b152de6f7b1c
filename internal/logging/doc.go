// Package logging builds the slog loggers used by the cbzconv CLI.
//
// Two formats are supported: a compact console format for terminals and a
// JSON format for machine consumption. Library code receives a
// *slog.Logger and never configures handlers itself.
package logging
