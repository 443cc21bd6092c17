// Package usersink bridges chartpub activity events into a go-users
// activity sink.
package usersink

import (
	"context"
	"strings"
	"time"

	"github.com/chartpub/chartpub/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Sink is the subset of the go-users activity sink contract the hook
// needs.
type Sink interface {
	Log(ctx context.Context, record usertypes.ActivityRecord) error
}

// Hook maps activity events onto go-users activity records. Events with
// no verb are dropped silently; the hook never blocks event emission on
// malformed identifiers.
type Hook struct {
	Sink Sink
}

// Notify implements activity.Notifier.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	if strings.TrimSpace(event.Verb) == "" {
		return nil
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	data := map[string]any{}
	for key, value := range event.Metadata {
		data[key] = value
	}
	if event.DefinitionCode != "" {
		data["definition_code"] = event.DefinitionCode
	}
	if len(event.Recipients) > 0 {
		data["recipients"] = append([]string{}, event.Recipients...)
	}

	record := usertypes.ActivityRecord{
		ActorID:    parseID(event.ActorID),
		UserID:     parseID(event.UserID),
		TenantID:   parseID(event.TenantID),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		OccurredAt: occurredAt,
		Data:       data,
	}
	return h.Sink.Log(ctx, record)
}

func parseID(raw string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil
	}
	return id
}

var _ activity.Notifier = Hook{}
