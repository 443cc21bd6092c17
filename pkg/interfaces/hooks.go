package interfaces

import "context"

// HTMLHook contributes markup fragments to a rendered chart page. Hooks run
// in registration order; a hook returning an error is skipped rather than
// failing the render (collect semantics are success-filtered).
type HTMLHook func(ctx context.Context, chartID string) (string, error)

// BlockAsset is an additional file shipped alongside a chart website by an
// embedded block plugin (e.g. a getting-started panel or data table widget).
type BlockAsset struct {
	// Source is an absolute path to the file on disk.
	Source string
	// Prefix namespaces the copied asset inside the output directory.
	Prefix string
}

// BlockProvider contributes optional embedded block widgets and their asset
// dependencies to a chart website build.
type BlockProvider interface {
	Blocks(ctx context.Context, chartID string) ([]BlockAsset, error)
}

// HTMLHookRegistry collects head and body fragments from registered hooks.
// It stands in for the original platform's event-bus fan-out: every listener
// runs, failures are dropped, and the surviving fragments are concatenated
// in registration order.
type HTMLHookRegistry struct {
	head []HTMLHook
	body []HTMLHook
}

// OnHeadHTML registers a hook contributing to the document head.
func (r *HTMLHookRegistry) OnHeadHTML(hook HTMLHook) {
	if hook != nil {
		r.head = append(r.head, hook)
	}
}

// OnBodyHTML registers a hook contributing to the document body.
func (r *HTMLHookRegistry) OnBodyHTML(hook HTMLHook) {
	if hook != nil {
		r.body = append(r.body, hook)
	}
}

// HeadHTML returns the successful head fragments in registration order.
func (r *HTMLHookRegistry) HeadHTML(ctx context.Context, chartID string) []string {
	return collect(ctx, chartID, r.head)
}

// BodyHTML returns the successful body fragments in registration order.
func (r *HTMLHookRegistry) BodyHTML(ctx context.Context, chartID string) []string {
	return collect(ctx, chartID, r.body)
}

func collect(ctx context.Context, chartID string, hooks []HTMLHook) []string {
	if len(hooks) == 0 {
		return nil
	}
	out := make([]string, 0, len(hooks))
	for _, hook := range hooks {
		fragment, err := hook(ctx, chartID)
		if err != nil {
			continue
		}
		if fragment != "" {
			out = append(out, fragment)
		}
	}
	return out
}
