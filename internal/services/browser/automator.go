package browser

import "context"

// SelectOption is one entry of a select control.
type SelectOption struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// Link is one anchor of a results list.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Automator is the capability surface the portal workflow driver runs
// against. Waits block until the addressed control is usable or the context
// expires; reads return the control's current state.
type Automator interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string) error
	Click(ctx context.Context, selector string) error
	SelectByValue(ctx context.Context, selector, value string) error
	SelectByText(ctx context.Context, selector, text string) error
	Upload(ctx context.Context, selector, path string) error
	Options(ctx context.Context, selector string) ([]SelectOption, error)
	Links(ctx context.Context, selector string) ([]Link, error)
	Close() error
}

// Factory opens a fresh automation session. Each pipeline attempt owns
// exactly one session and closes it before the next attempt starts.
type Factory func(ctx context.Context) (Automator, error)
