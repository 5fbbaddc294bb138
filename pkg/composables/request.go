package composables

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/bookline/console/pkg/constants"
)

func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, logger)
}

// UseLogger returns the request-scoped logger, or a discard-free default so
// callers never nil-check.
func UseLogger(ctx context.Context) *logrus.Entry {
	logger, ok := ctx.Value(constants.LoggerKey).(*logrus.Entry)
	if !ok {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return logger
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, constants.RequestIDKey, requestID)
}

func UseRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(constants.RequestIDKey).(string)
	if !ok {
		return ""
	}
	return requestID
}
