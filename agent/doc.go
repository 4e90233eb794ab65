// Package agent implements the specialized agents of the pipeline.
//
// A Task wraps one fan-out role (past, present, future) around a model
// invoker: it frames the user entry with the role's prompt, enforces the
// role's soft deadline, validates the structured completion, and always
// resolves to a terminal AgentResult. An Integrator consumes the completed
// fan-out bundle and produces the final synthesis result, short-circuiting
// without any model call when no fan-out role succeeded.
//
// Agents never propagate model failures as errors; every failure mode is
// captured as a timeout or error outcome so one role can never abort its
// siblings or crash the session.
package agent
