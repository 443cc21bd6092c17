package activity

import "time"

// Event is a domain activity notification emitted by the publishing
// pipeline (chart published, chart unpublished). Identifier fields are
// strings so events can cross process boundaries without caring about the
// host's id types.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}
