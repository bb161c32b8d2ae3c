// Package service contains the application-specific use cases of 10xCards:
// managing flashcard sets and the flashcards inside them. It orchestrates the
// domain types and the persistence interfaces from internal/store.
//
// Every operation is scoped to the owning user. A set that is missing,
// deleted or owned by someone else is reported as not found, so callers
// cannot probe for the existence of other users' data.
//
// Dependencies are injected through constructors. Services never depend on a
// concrete storage implementation, only on the interfaces in internal/store.
//
// Errors keep their domain kind when wrapped in ServiceError, so the API layer
// classifies them with domain.KindOf.
package service
