package auth

// Role is a staff designation rank.
type Role string

const (
	RolePrincipal Role = "principal"
	RoleHOD       Role = "hod"
	RoleIncharge  Role = "incharge"
	RoleTeacher   Role = "teacher"
)

// rank orders designations; higher value means more authority.
var rank = map[Role]int{
	RoleTeacher:   1,
	RoleIncharge:  2,
	RoleHOD:       3,
	RolePrincipal: 4,
}

// Valid reports whether r is a known designation.
func (r Role) Valid() bool {
	_, ok := rank[r]
	return ok
}

// Outranks reports whether r has strictly more authority than other.
// Unknown roles never outrank anything.
func (r Role) Outranks(other Role) bool {
	return rank[r] > rank[other]
}

// AtLeast reports whether r has at least the authority of other.
func (r Role) AtLeast(other Role) bool {
	return rank[r] >= rank[other] && rank[r] > 0
}
