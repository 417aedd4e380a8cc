// Package history persists finished scan sessions in a local SQLite
// database so payloads survive after the scanner is closed.
//
// Recording is opt-in through the [history] config table. Each session row
// keeps its start and end times and its codes in first-seen order. Schema
// changes ship as numbered files under migrations/ and are applied once,
// tracked in schema_migrations.
package history
