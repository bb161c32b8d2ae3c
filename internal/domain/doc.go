// Package domain contains the core business entities of 10xCards: flashcard
// sets, flashcards, generated cards and users, together with their
// validation rules and the tagged error type shared by every layer.
package domain
