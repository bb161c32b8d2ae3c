// Package store defines the persistence interfaces for flashcard sets,
// flashcards, users and password reset tokens, along with the shared store
// errors and the RunInTransaction helper. Implementations live in
// internal/platform/postgres.
package store
