package llm

import (
	"errors"
	"strings"
)

// ErrFatalAPI marks provider errors that retrying will not fix:
// authentication, billing, and quota failures. Consolidation aborts a
// run on these instead of burning through every episode.
var ErrFatalAPI = errors.New("fatal API error")

var fatalErrorMarkers = []string{
	"credit balance",
	"rate limit",
	"quota",
	"billing",
	"invalid api key",
	"authentication",
	"unauthorized",
	"401",
	"403",
}

// isFatalAPIError reports whether the error indicates a non-retryable
// provider failure. Matching is on message substrings because the
// providers behind langchaingo don't share typed errors.
func isFatalAPIError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range fatalErrorMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// wrapFatalError tags fatal provider errors with ErrFatalAPI so callers
// can errors.Is them. Non-fatal errors pass through unchanged.
func wrapFatalError(err error) error {
	if err == nil {
		return nil
	}
	if isFatalAPIError(err) {
		return errors.Join(ErrFatalAPI, err)
	}
	return err
}
