// Package server exposes the orchestration pipeline over HTTP.
//
// The surface mirrors the journaling service contract: ingest accepts an
// entry and returns a trace id immediately while the run continues in the
// background; result reports the session as it moves through its statuses;
// session endpoints create, pause and resume; tasks start healing
// journeys; eval and consent endpoints feed the evaluation store; the
// user data endpoint purges everything recorded for a user.
package server
