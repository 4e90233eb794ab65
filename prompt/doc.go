// Package prompt owns the model-facing contract of every pipeline role: the
// instruction templates, the composition of user entry and recalled context
// into requests, and the parsing/validation of the strict-JSON completions
// the templates demand.
//
// Agents stay free of prompt wording and schema knowledge; they hand the
// raw entry in and get either a validated payload or a typed parse failure
// back.
package prompt
