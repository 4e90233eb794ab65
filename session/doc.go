// Package session houses concrete implementations of core.SessionStore.
// The interface itself (and the Session struct) live in the core package
// to centralize domain contracts. Keeping only implementations here stops
// higher level packages (agents, orchestrator, server) from depending on
// concrete storage.
//
// Two backends are provided: a volatile in-memory store for tests and
// embedded use, and a SQLite store for deployments where results must
// survive restarts. Additional backends (Redis, Postgres, etc.) can be
// added without changing any calling code; only the wiring layer decides
// which implementation to instantiate.
package session
