// Package model defines the provider-agnostic abstractions and concrete
// helpers for invoking language models inside ChronoSynth.
//
// Core goals:
//   - Hide every vendor SDK behind a single blocking Invoker interface
//   - Classify failures into a small typed taxonomy (timeout,
//     transport_error, malformed_response) that the pipeline can act on
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockInvoker)
//
// Providers (e.g. OpenAI, Anthropic) implement the Invoker interface from
// this package so higher layers (agents, orchestrator) remain decoupled
// from vendor SDKs. Swapping providers is a wiring decision, never a code
// change in the pipeline.
package model
