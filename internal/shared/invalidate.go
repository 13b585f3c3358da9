package shared

import "context"

// ReportInvalidator is notified after writes that change dashboard figures.
type ReportInvalidator interface {
	InvalidateReports(ctx context.Context, reason string) error
}

// NopInvalidator ignores notifications.
type NopInvalidator struct{}

func (NopInvalidator) InvalidateReports(context.Context, string) error { return nil }
