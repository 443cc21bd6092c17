package chartscmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/chartpub/chartpub/internal/commands"
	"github.com/chartpub/chartpub/internal/publish"
	"github.com/chartpub/chartpub/pkg/interfaces"
	"github.com/google/uuid"
)

const publishChartMessageType = "chartpub.chart.publish"

// PublishChartCommand requests publication of a chart.
type PublishChartCommand struct {
	ChartID string     `json:"chart_id"`
	UserID  uuid.UUID  `json:"user_id"`
	TeamID  *uuid.UUID `json:"team_id,omitempty"`
}

// Type implements command.Message.
func (PublishChartCommand) Type() string { return publishChartMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m PublishChartCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.ChartID) == "" {
		errs["chart_id"] = validation.NewError("chartpub.chart.publish.chart_id_required", "chart_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PublishChartHandler runs the publish pipeline through the shared command
// handler foundation.
type PublishChartHandler struct {
	inner *commands.Handler[PublishChartCommand]
}

// NewPublishChartHandler constructs a handler wired to the publish service.
func NewPublishChartHandler(service publish.Service, logger interfaces.Logger, opts ...commands.HandlerOption[PublishChartCommand]) *PublishChartHandler {
	exec := func(ctx context.Context, msg PublishChartCommand) error {
		actor := interfaces.Actor{UserID: msg.UserID}
		if msg.TeamID != nil {
			actor.TeamID = *msg.TeamID
		}
		_, err := service.Publish(ctx, publish.PublishRequest{
			ChartID: msg.ChartID,
			Actor:   actor,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[PublishChartCommand]{
		commands.WithLogger[PublishChartCommand](logger),
		commands.WithOperation[PublishChartCommand]("chart.publish"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishChartHandler{
		inner: commands.NewHandler[PublishChartCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[PublishChartCommand].Execute.
func (h *PublishChartHandler) Execute(ctx context.Context, msg PublishChartCommand) error {
	return h.inner.Execute(ctx, msg)
}
