package enum

// UserRole is the single role a staff account holds.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

func (r UserRole) String() string {
	return string(r)
}
