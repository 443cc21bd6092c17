package publish

import (
	"fmt"

	urlkit "github.com/goliatone/go-urlkit"
)

const (
	publicURLGroup = "public"
	chartRoute     = "chart"
)

// URLResolver builds the public URLs for published charts through a
// go-urlkit route manager, so hosts can remap the URL scheme without
// touching the orchestrator.
type URLResolver struct {
	manager *urlkit.RouteManager
	group   string
	route   string
}

// NewURLResolver builds a resolver with the default chart route layout:
// {base}/{chart_id}/{version}/.
func NewURLResolver(baseURL string) *URLResolver {
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    publicURLGroup,
				BaseURL: baseURL,
				Paths: map[string]string{
					chartRoute: "/:chart_id/:version/",
				},
			},
		},
	})
	return NewURLResolverWithManager(manager, publicURLGroup, chartRoute)
}

// NewURLResolverWithManager wraps an existing route manager. The group and
// route default to "public" and "chart" when empty.
func NewURLResolverWithManager(manager *urlkit.RouteManager, group, route string) *URLResolver {
	if group == "" {
		group = publicURLGroup
	}
	if route == "" {
		route = chartRoute
	}
	return &URLResolver{manager: manager, group: group, route: route}
}

// ChartURL returns the public URL for a chart version.
func (r *URLResolver) ChartURL(chartID string, version int) (string, error) {
	if r == nil || r.manager == nil {
		return "", fmt.Errorf("publish: url resolver not configured")
	}
	group, err := r.lookupGroup()
	if err != nil {
		return "", err
	}
	builder := group.Builder(r.route)
	builder.WithParam("chart_id", chartID)
	builder.WithParam("version", version)
	url, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("publish: build chart url: %w", err)
	}
	return url, nil
}

// lookupGroup guards against urlkit panicking on unknown group names.
func (r *URLResolver) lookupGroup() (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("publish: url group %q not found", r.group)
		}
	}()
	group = r.manager.Group(r.group)
	return group, err
}
