package core

import "fmt"

// Bundle collects the per-role results of one orchestration run. The three
// fan-out slots always exist and each is written exactly once by its owning
// task; the integration result is attached after the fan-out join.
//
// Contract:
//   - The role keys are structurally fixed to past/present/future, so a
//     bundle can never gain or lose a fan-out role
//   - Set routes a result to the slot owned by its role and rejects
//     double writes
//   - Complete is true only once all three fan-out slots are terminal.
type Bundle struct {
	Past        AgentResult  `json:"past"`
	Present     AgentResult  `json:"present"`
	Future      AgentResult  `json:"future"`
	Integration *AgentResult `json:"integration,omitempty"`
}

// Set stores a resolved result in the slot owned by its role.
func (b *Bundle) Set(r AgentResult) error {
	if !r.Terminal() {
		return fmt.Errorf("bundle: refusing to store unresolved result for role %q", r.Role)
	}
	switch r.Role {
	case RolePast:
		if b.Past.Terminal() {
			return fmt.Errorf("bundle: slot %q already written", r.Role)
		}
		b.Past = r
	case RolePresent:
		if b.Present.Terminal() {
			return fmt.Errorf("bundle: slot %q already written", r.Role)
		}
		b.Present = r
	case RoleFuture:
		if b.Future.Terminal() {
			return fmt.Errorf("bundle: slot %q already written", r.Role)
		}
		b.Future = r
	case RoleIntegration:
		if b.Integration != nil {
			return fmt.Errorf("bundle: slot %q already written", r.Role)
		}
		cp := r
		b.Integration = &cp
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRole, r.Role)
	}
	return nil
}

// Get returns the result stored for the given role.
func (b Bundle) Get(role Role) (AgentResult, bool) {
	switch role {
	case RolePast:
		return b.Past, true
	case RolePresent:
		return b.Present, true
	case RoleFuture:
		return b.Future, true
	case RoleIntegration:
		if b.Integration != nil {
			return *b.Integration, true
		}
	}
	return AgentResult{}, false
}

// FanOut returns the three fan-out results in canonical role order.
func (b Bundle) FanOut() [FanOutWidth]AgentResult {
	return [FanOutWidth]AgentResult{b.Past, b.Present, b.Future}
}

// Complete reports whether all three fan-out slots hold terminal results.
func (b Bundle) Complete() bool {
	for _, r := range b.FanOut() {
		if !r.Terminal() {
			return false
		}
	}
	return true
}

// Successes returns the fan-out results that resolved successfully, in
// canonical role order.
func (b Bundle) Successes() []AgentResult {
	var out []AgentResult
	for _, r := range b.FanOut() {
		if r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Unavailable returns the fan-out roles that did not succeed, in canonical
// role order.
func (b Bundle) Unavailable() []Role {
	var out []Role
	for _, r := range b.FanOut() {
		if !r.OK() {
			out = append(out, r.Role)
		}
	}
	return out
}

// AllFailed reports whether the fan-out finished with zero successes.
func (b Bundle) AllFailed() bool {
	return b.Complete() && len(b.Successes()) == 0
}

// Clone returns a deep copy of the bundle safe for independent mutation.
func (b Bundle) Clone() Bundle {
	cp := Bundle{
		Past:    b.Past.Clone(),
		Present: b.Present.Clone(),
		Future:  b.Future.Clone(),
	}
	if b.Integration != nil {
		ir := b.Integration.Clone()
		cp.Integration = &ir
	}
	return cp
}
