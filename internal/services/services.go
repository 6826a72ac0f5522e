package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"social-service/internal/apperrors"
	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/repositories"
)

// Notifier pushes a persisted message to the live connections of its recipients.
type Notifier interface {
	DeliverMessage(ctx context.Context, view models.MessageView, recipients []string)
}

func newID() string {
	return uuid.NewString()
}

// storeErr converts a repository failure into the service error taxonomy.
func storeErr(err error, notFound *apperrors.Error, message string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound
	}
	return apperrors.Internal(message, err)
}

// publishEvent emits a best-effort domain event; failures are logged and counted.
func publishEvent(ctx context.Context, publisher observability.Publisher, name, actorID, subjectID string, data map[string]any) {
	event := observability.EventEnvelope{
		EventType: "domain_event",
		EventName: name,
		Payload: models.DomainEvent{
			Name:    name,
			ActorID: actorID,
			Subject: subjectID,
			Data:    data,
		},
	}
	_ = observability.PublishWith(ctx, publisher, "social."+name, event, observability.HeadersFromContext(ctx))
}

// uniqueTrimmed trims entries, drops blanks and keeps the first occurrence of each.
func uniqueTrimmed(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
