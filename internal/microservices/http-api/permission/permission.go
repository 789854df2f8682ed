// Package permission decides whether a caller may perform an action.
//
// Evaluate is a pure function: it never touches the store. Object-level
// checks (review/comment authorship) need the resolved author id passed
// in as a Resource, after the coarse check without one has passed.
package permission

import "errors"

var (
	ErrNotAuthenticated = errors.New("authentication credentials were not provided")
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type Action int

const (
	ReadCatalog Action = iota
	WriteCategory
	WriteGenre
	WriteTitle
	ReadFeedback
	CreateFeedback
	ModifyFeedback
	ReadSelf
	UpdateSelf
	ManageUsers
	Signup
)

var actionNames = map[Action]string{
	ReadCatalog:    "read_catalog",
	WriteCategory:  "write_category",
	WriteGenre:     "write_genre",
	WriteTitle:     "write_title",
	ReadFeedback:   "read_feedback",
	CreateFeedback: "create_feedback",
	ModifyFeedback: "modify_feedback",
	ReadSelf:       "read_self",
	UpdateSelf:     "update_self",
	ManageUsers:    "manage_users",
	Signup:         "signup",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

// Principal is the resolved caller. The zero value is the anonymous caller.
type Principal struct {
	UserID      int64
	Username    string
	Role        Role
	IsStaff     bool
	IsSuperuser bool
}

var Anonymous = Principal{}

func (p Principal) Authenticated() bool {
	return p.UserID != 0
}

// IsAdmin is true for the admin role and for superusers.
func (p Principal) IsAdmin() bool {
	return p.Authenticated() && (p.Role == RoleAdmin || p.IsSuperuser)
}

// IsModerator is true for moderators and everyone above them.
func (p Principal) IsModerator() bool {
	return p.Authenticated() && (p.Role == RoleModerator || p.IsAdmin())
}

// Resource carries the ownership facts of the target object.
type Resource struct {
	AuthorID int64
}

type Denial int

const (
	DenyNone Denial = iota
	DenyNotAuthenticated
	DenyForbidden
)

type Decision struct {
	Allowed bool
	Denial  Denial
	// LockedFields lists writable fields whose submitted values must be
	// discarded in favour of the stored ones.
	LockedFields []string
}

// Err converts a denial into the matching sentinel error, nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Denial == DenyNotAuthenticated {
		return ErrNotAuthenticated
	}
	return ErrPermissionDenied
}

// Locked reports whether field is in the decision's field mask.
func (d Decision) Locked(field string) bool {
	for _, f := range d.LockedFields {
		if f == field {
			return true
		}
	}
	return false
}

type rule func(p Principal, r *Resource) bool

func anyone(Principal, *Resource) bool { return true }

func authenticated(p Principal, _ *Resource) bool { return p.Authenticated() }

func admin(p Principal, _ *Resource) bool { return p.IsAdmin() }

func anonymousOnly(p Principal, _ *Resource) bool { return !p.Authenticated() }

func authorOrModerator(p Principal, r *Resource) bool {
	if !p.Authenticated() {
		return false
	}
	if r == nil {
		// coarse stage; ownership is resolved later
		return true
	}
	return r.AuthorID == p.UserID || p.IsModerator()
}

var rules = map[Action]rule{
	ReadCatalog:    anyone,
	WriteCategory:  admin,
	WriteGenre:     admin,
	WriteTitle:     admin,
	ReadFeedback:   anyone,
	CreateFeedback: authenticated,
	ModifyFeedback: authorOrModerator,
	ReadSelf:       authenticated,
	UpdateSelf:     authenticated,
	ManageUsers:    admin,
	Signup:         anonymousOnly,
}

// Evaluate returns the decision for p performing a on r. r may be nil for
// the coarse, action-level check.
func Evaluate(p Principal, a Action, r *Resource) Decision {
	allow, ok := rules[a]
	if !ok || !allow(p, r) {
		if !p.Authenticated() && a != Signup {
			return Decision{Denial: DenyNotAuthenticated}
		}
		return Decision{Denial: DenyForbidden}
	}

	d := Decision{Allowed: true}
	if a == UpdateSelf && !(p.IsStaff || p.IsSuperuser || p.Role == RoleAdmin) {
		d.LockedFields = []string{"role"}
	}
	return d
}
