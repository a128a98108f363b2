package signer

import (
	"strings"
	"time"
)

// Envelope is a single outgoing upstream call. Build a new one per call:
// the timestamp must be current at send time.
type Envelope struct {
	Method    string
	Path      string
	Headers   map[string]string
	Body      []byte
	Timestamp time.Time
}

// NewEnvelope builds the POST envelope for a PA-API operation with all
// headers the signer requires. body must be the exact bytes that will be sent.
func NewEnvelope(sc SigningContext, operation string, body []byte, now time.Time) *Envelope {
	env := &Envelope{
		Method:    "POST",
		Path:      OperationPath(operation),
		Body:      body,
		Timestamp: now.UTC(),
	}
	env.Headers = map[string]string{
		HeaderContentEncoding: ContentEncoding,
		HeaderContentType:     ContentType,
		HeaderHost:            sc.Host,
		HeaderAmzDate:         env.AmzDate(),
		HeaderAmzTarget:       TargetPrefix + operation,
	}
	return env
}

// OperationPath returns the request path for a PA-API operation,
// e.g. SearchItems -> /paapi5/searchitems.
func OperationPath(operation string) string {
	return PathPrefix + strings.ToLower(operation)
}

// AmzDate returns the timestamp in ISO-8601 basic format.
func (e *Envelope) AmzDate() string {
	return e.Timestamp.UTC().Format(TimeFormat)
}

// Date returns the first eight characters of AmzDate.
func (e *Envelope) Date() string {
	return e.AmzDate()[:8]
}
