// Package postgres provides PostgreSQL implementations of the interfaces in
// internal/store. Queries go through database/sql with the pgx driver;
// flashcard set counters are computed with COUNT ... FILTER on every read.
package postgres
