// Package task runs background work on an in-memory queue. A WorkerPool
// drains the TaskQueue with a fixed number of goroutines; the main task type
// fills a newly created flashcard set with AI generated cards.
package task
