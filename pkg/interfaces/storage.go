package interfaces

import "context"

// MoveRequest describes a finished site build awaiting promotion to durable
// public storage. FileMap is ordered; index.html is always the final entry.
type MoveRequest struct {
	ChartID string
	Version int
	OutDir  string
	FileMap []string
}

// PublishStorage moves rendered chart websites into durable public storage.
// Move returns the public URL serving the deployed site, or an error when
// the transfer failed; partial transfers must not yield a URL. Retire
// withdraws a previously deployed version.
//
// Move is invoked at most once per publish attempt and is not retried by the
// orchestrator; callers retry by re-running the publish.
type PublishStorage interface {
	Move(ctx context.Context, req MoveRequest) (string, error)
	Retire(ctx context.Context, chartID string, version int) error
}
