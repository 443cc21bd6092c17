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

const unpublishChartMessageType = "chartpub.chart.unpublish"

// UnpublishChartCommand retires the published version of a chart.
type UnpublishChartCommand struct {
	ChartID string     `json:"chart_id"`
	UserID  uuid.UUID  `json:"user_id"`
	TeamID  *uuid.UUID `json:"team_id,omitempty"`
}

// Type implements command.Message.
func (UnpublishChartCommand) Type() string { return unpublishChartMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m UnpublishChartCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.ChartID) == "" {
		errs["chart_id"] = validation.NewError("chartpub.chart.unpublish.chart_id_required", "chart_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UnpublishChartHandler retires charts through the shared command handler
// foundation.
type UnpublishChartHandler struct {
	inner *commands.Handler[UnpublishChartCommand]
}

// NewUnpublishChartHandler constructs a handler wired to the publish service.
func NewUnpublishChartHandler(service publish.Service, logger interfaces.Logger, opts ...commands.HandlerOption[UnpublishChartCommand]) *UnpublishChartHandler {
	exec := func(ctx context.Context, msg UnpublishChartCommand) error {
		actor := interfaces.Actor{UserID: msg.UserID}
		if msg.TeamID != nil {
			actor.TeamID = *msg.TeamID
		}
		return service.Unpublish(ctx, publish.UnpublishRequest{
			ChartID: msg.ChartID,
			Actor:   actor,
		})
	}

	handlerOpts := []commands.HandlerOption[UnpublishChartCommand]{
		commands.WithLogger[UnpublishChartCommand](logger),
		commands.WithOperation[UnpublishChartCommand]("chart.unpublish"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UnpublishChartHandler{
		inner: commands.NewHandler[UnpublishChartCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[UnpublishChartCommand].Execute.
func (h *UnpublishChartHandler) Execute(ctx context.Context, msg UnpublishChartCommand) error {
	return h.inner.Execute(ctx, msg)
}
