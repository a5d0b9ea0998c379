package model

// Payload is a decoded response body.
type Payload struct {
	// Text is the decoded text field of the response. Depending on the
	// source it holds a string, a []any of strings, or nested []any
	// values. It is nil when the field is absent or the body could not be
	// decoded.
	Text any

	// Raw is the undecoded response body.
	Raw []byte
}

// FetchResult is the outcome of fetching one WorkUnit.
// Exactly one FetchResult is produced per unit; retries happen inside the
// fetcher and are only visible through Attempts.
type FetchResult struct {
	// Unit is the unit that was fetched.
	Unit WorkUnit

	// OK is true when a usable response was received.
	OK bool

	// Payload holds the decoded response when OK is true.
	Payload Payload

	// Err describes why the fetch failed when OK is false.
	Err error

	// Status is the HTTP status of the last attempt, or 0 if no response arrived.
	Status int

	// Attempts is the number of network calls that were made.
	Attempts int
}

// Detail returns the failure reason, or an empty string for successful results.
func (r FetchResult) Detail() string {
	if r.OK || r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
