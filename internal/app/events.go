package app

import (
	"context"
	"errors"

	"quickstay/internal/domain"
)

// Fanout forwards an event to every configured publisher (queue, webhook).
// All publishers are attempted; errors are joined for the caller to log.
type Fanout []domain.EventPublisher

func (f Fanout) BookingCreated(ctx context.Context, ev domain.BookingCreatedEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.BookingCreated(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
