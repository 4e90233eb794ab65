// Package core provides the foundational domain types and interfaces of
// ChronoSynth. It defines the core abstractions for:
//
//   - Roles (the four specialized agents of the pipeline)
//   - AgentResults (immutable terminal outcomes of agent invocations)
//   - Bundles (role-keyed results of one orchestration run)
//   - Plans (the synthesized final output of a completed run)
//   - Sessions (stateful run containers with a lifecycle status)
//   - Pluggable session stores and observation hooks
//
// The package intentionally keeps implementation concerns (persistence,
// model providers, concrete agents, HTTP surfaces) out of scope, exposing
// small interfaces to enable custom backends and extensions.
package core
