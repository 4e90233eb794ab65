package core

// Role identifies one specialized agent within the pipeline.
type Role string

// Pipeline roles. The first three run concurrently during fan-out; the
// integration role runs once afterwards to synthesize their results.
const (
	RolePast        Role = "past"
	RolePresent     Role = "present"
	RoleFuture      Role = "future"
	RoleIntegration Role = "integration"
)

// FanOutWidth is the number of perspective agents launched per run.
const FanOutWidth = 3

// FanOutRoles returns the three concurrently executed roles in canonical
// order. The order is fixed so bundles and prompts stay deterministic
// regardless of completion order.
func FanOutRoles() [FanOutWidth]Role {
	return [FanOutWidth]Role{RolePast, RolePresent, RoleFuture}
}

// Valid reports whether r is one of the known pipeline roles.
func (r Role) Valid() bool {
	switch r {
	case RolePast, RolePresent, RoleFuture, RoleIntegration:
		return true
	}
	return false
}

// String returns the role identifier.
func (r Role) String() string { return string(r) }
