package chartpub

import (
	"context"
	"fmt"

	pubcharts "github.com/chartpub/chartpub/charts"
	"github.com/chartpub/chartpub/internal/publish"
	pubthemes "github.com/chartpub/chartpub/themes"
	"github.com/uptrace/bun"
)

// CreateSchema creates every table the bun-backed repositories expect.
// Intended for sqlite-backed tests and fresh single-host deployments;
// hosts with managed databases should run their own versioned migrations
// against the same models.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*pubcharts.Chart)(nil),
		(*pubcharts.ChartPublic)(nil),
		(*pubcharts.ChartAsset)(nil),
		(*pubthemes.Theme)(nil),
		(*publish.ProgressRecord)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("chartpub: create table %T: %w", model, err)
		}
	}
	return nil
}
