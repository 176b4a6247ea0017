// Package authz answers permission questions over the current user's
// permission codes.
//
// Permission codes are opaque backend strings such as "PROJECT_VIEW_ALL".
// The client never derives permissions itself; it only checks membership in
// the set the backend returned for the logged-in user.
package authz

import "sort"

// Oracle answers permission questions for the current user.
type Oracle interface {
	// HasPermission reports exact membership of code.
	HasPermission(code string) bool

	// HasAnyPermission reports whether at least one code is held.
	// An empty list yields false.
	HasAnyPermission(codes ...string) bool

	// HasAllPermissions reports whether every code is held.
	// An empty list yields true.
	HasAllPermissions(codes ...string) bool
}

// PermissionSet is a set of permission codes. The zero value is an empty set.
type PermissionSet map[string]struct{}

// NewPermissionSet creates a set from codes. Duplicates and empty strings are
// dropped.
func NewPermissionSet(codes ...string) PermissionSet {
	set := make(PermissionSet, len(codes))
	for _, code := range codes {
		if code == "" {
			continue
		}
		set[code] = struct{}{}
	}
	return set
}

// HasPermission reports exact membership of code.
func (s PermissionSet) HasPermission(code string) bool {
	_, ok := s[code]
	return ok
}

// HasAnyPermission reports whether at least one code is held.
func (s PermissionSet) HasAnyPermission(codes ...string) bool {
	for _, code := range codes {
		if s.HasPermission(code) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every code is held.
func (s PermissionSet) HasAllPermissions(codes ...string) bool {
	for _, code := range codes {
		if !s.HasPermission(code) {
			return false
		}
	}
	return true
}

// Len returns the number of codes in the set.
func (s PermissionSet) Len() int {
	return len(s)
}

// Codes returns the codes in sorted order.
func (s PermissionSet) Codes() []string {
	codes := make([]string, 0, len(s))
	for code := range s {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Clone returns an independent copy of the set.
func (s PermissionSet) Clone() PermissionSet {
	out := make(PermissionSet, len(s))
	for code := range s {
		out[code] = struct{}{}
	}
	return out
}

// Missing returns the codes from codes that are not held, in input order.
func (s PermissionSet) Missing(codes ...string) []string {
	var missing []string
	for _, code := range codes {
		if !s.HasPermission(code) {
			missing = append(missing, code)
		}
	}
	return missing
}
