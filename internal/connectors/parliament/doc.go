// Package parliament implements the remote sources against the UK
// Parliament public APIs: the id-indexed members and constituencies lookups
// on members-api.parliament.uk and the date-windowed written-questions
// search on writtenquestions-api.parliament.uk.
//
// Both endpoints are idempotent, side-effect-free reads with no
// authentication. The client throttles proactively and retries transient
// failures; a 404 surfaces as a not-found signal distinct from network
// errors.
package parliament
