package notify

import (
	"context"
	"errors"
	"fmt"
)

// Multi delivers every event to each of its notifiers in order. A failing
// notifier does not stop delivery to the rest.
type Multi []Notifier

// Notify implements Notifier. The returned error joins every failure,
// each prefixed with the notifier's name.
func (m Multi) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", nameOf(n), err))
		}
	}
	return errors.Join(errs...)
}

// Threshold passes on events at or above min and drops the rest.
func Threshold(min Severity, n Notifier) Notifier {
	return threshold{min: min, next: n}
}

type threshold struct {
	min  Severity
	next Notifier
}

func (t threshold) Notify(ctx context.Context, event Event) error {
	if !event.Severity.AtLeast(t.min) {
		return nil
	}
	return t.next.Notify(ctx, event)
}

func (t threshold) Name() string {
	return nameOf(t.next)
}

func nameOf(n Notifier) string {
	if named, ok := n.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", n)
}
