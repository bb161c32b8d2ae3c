// Package mocks holds hand-written fakes of the generator, the auth
// provider and the flashcard services, shared by the api, task and command
// tests.
//
// Every fake has one Fn field per method. A nil Fn falls back to the fake's
// default values, so a test sets only the behavior it checks:
//
//	gen := &mocks.MockGenerator{
//		GenerateCardFn: func(ctx context.Context, req generation.Request) (domain.GeneratedCard, error) {
//			return domain.GeneratedCard{Front: "Q?", Back: "A"}, nil
//		},
//	}
package mocks
