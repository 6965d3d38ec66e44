// Package database manages the SQLite connection and schema migrations.
//
// Open configures the connection string (WAL mode, busy timeout, foreign
// keys) and restricts the pool to a single connection to match SQLite's
// single-writer model. Migrations are plain SQL files embedded into the
// binary by the migrations package and tracked in a schema_migrations
// table, applied one transaction each.
package database
