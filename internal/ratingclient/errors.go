package ratingclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport is returned when the request never produced a response.
	ErrTransport = errors.New("ratingclient: transport failure")
	// ErrMalformedResponse is returned when a successful response cannot be
	// read as a rating summary.
	ErrMalformedResponse = errors.New("ratingclient: malformed response")
	// ErrSuperseded is returned by a submission that was replaced by a newer
	// one for the same photo.
	ErrSuperseded = errors.New("ratingclient: superseded by a newer submission")
)

// StatusError reports a non-2xx answer from the ratings server.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ratingclient: server returned %d: %s", e.Code, e.Body)
}

// Message is the text shown to the user: the server body verbatim, or the
// status text when the server sent nothing.
func (e *StatusError) Message() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("Rating failed: %d %s", e.Code, http.StatusText(e.Code))
}
