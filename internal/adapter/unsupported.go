package adapter

import "context"

// unsupported raises from List and Restart but reports failed outcomes from
// Change and Restore.
type unsupported struct {
	platform string
}

func (u unsupported) err() error { return &UnsupportedPlatformError{Platform: u.platform} }

func (u unsupported) List(context.Context) ([]Record, error) { return nil, u.err() }

func (u unsupported) Change(context.Context, string, string) Outcome {
	return Outcome{Message: u.err().Error()}
}

func (u unsupported) Restore(context.Context, string, string) Outcome {
	return Outcome{Message: u.err().Error()}
}

func (u unsupported) Restart(context.Context, string) error { return u.err() }
