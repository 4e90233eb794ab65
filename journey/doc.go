// Package journey runs the staged healing walk attached to a session.
//
// A journey advances through seven fixed stages, making one short model
// call per stage and persisting each stage as a session checkpoint. The
// pause flag on the session suspends the walk between stages; resuming
// continues at the next unvisited stage, never skipping one. Runner.Start
// runs the walk in the background and returns a job id that Cancel accepts.
package journey
