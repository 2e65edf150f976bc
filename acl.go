package baas

// Reserved ACL entries.
const (
	GroupAuthenticated = "g:authenticated"
	GroupAnonymous     = "g:anonymous"
)

// Permission names an ACL entry list.
type Permission string

const (
	PermissionRead   Permission = "r"
	PermissionWrite  Permission = "w"
	PermissionCreate Permission = "c"
	PermissionUpdate Permission = "u"
	PermissionDelete Permission = "d"
	PermissionAdmin  Permission = "admin"
)

// Acl is the access control list attached to objects, files, and groups.
// Entries are user IDs or reserved group entries like GroupAuthenticated.
type Acl struct {
	Owner string   `json:"owner,omitempty" mapstructure:"owner"`
	R     []string `json:"r" mapstructure:"r"`
	W     []string `json:"w" mapstructure:"w"`
	C     []string `json:"c" mapstructure:"c"`
	U     []string `json:"u" mapstructure:"u"`
	D     []string `json:"d" mapstructure:"d"`
	Admin []string `json:"admin" mapstructure:"admin"`
}

// NewAcl returns an empty Acl with all entry lists allocated.
func NewAcl() *Acl {
	return &Acl{
		R: []string{}, W: []string{}, C: []string{},
		U: []string{}, D: []string{}, Admin: []string{},
	}
}

// Add appends entry to the list for perm, ignoring duplicates.
func (a *Acl) Add(perm Permission, entry string) *Acl {
	list := a.list(perm)
	if list == nil {
		return a
	}
	for _, e := range *list {
		if e == entry {
			return a
		}
	}
	*list = append(*list, entry)
	return a
}

// Remove drops entry from the list for perm.
func (a *Acl) Remove(perm Permission, entry string) *Acl {
	list := a.list(perm)
	if list == nil {
		return a
	}
	kept := (*list)[:0]
	for _, e := range *list {
		if e != entry {
			kept = append(kept, e)
		}
	}
	*list = kept
	return a
}

func (a *Acl) list(perm Permission) *[]string {
	switch perm {
	case PermissionRead:
		return &a.R
	case PermissionWrite:
		return &a.W
	case PermissionCreate:
		return &a.C
	case PermissionUpdate:
		return &a.U
	case PermissionDelete:
		return &a.D
	case PermissionAdmin:
		return &a.Admin
	default:
		return nil
	}
}
