package views

import "github.com/deevus/gtnh-translator-tui/internal/api"

// StateChanged is posted from the session's apply goroutine after every
// model update, so the UI redraws from a fresh snapshot.
type StateChanged struct{}

// TranslateFinished is posted when an ad-hoc translation round trip ends.
type TranslateFinished struct {
	Text     string
	Response *api.TranslateResponse
	Err      error
}

// StartFinished is posted when a start-run command returns.
type StartFinished struct {
	Err error
}
