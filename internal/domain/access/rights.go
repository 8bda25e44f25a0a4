package access

import (
	"sort"

	"github.com/erp/pos-gateway/internal/domain/shared"
)

// Right is a single permission a grant can carry. The set of rights is
// closed; unknown right names are rejected at the boundary instead of
// being passed through to the record store.
type Right string

const (
	RightSelect Right = "select"
	RightRead   Right = "read"
	RightWrite  Right = "write"
	RightCreate Right = "create"
	RightDelete Right = "delete"
	RightSubmit Right = "submit"
	RightCancel Right = "cancel"
	RightAmend  Right = "amend"
	RightReport Right = "report"
	RightExport Right = "export"
	RightImport Right = "import"
	RightShare  Right = "share"
	RightPrint  Right = "print"
	RightEmail  Right = "email"
)

// AllRights lists every right in canonical order.
var AllRights = []Right{
	RightSelect, RightRead, RightWrite, RightCreate, RightDelete,
	RightSubmit, RightCancel, RightAmend, RightReport, RightExport,
	RightImport, RightShare, RightPrint, RightEmail,
}

var validRights = func() map[Right]struct{} {
	m := make(map[Right]struct{}, len(AllRights))
	for _, r := range AllRights {
		m[r] = struct{}{}
	}
	return m
}()

// ParseRight validates a right name from an external source.
func ParseRight(name string) (Right, error) {
	r := Right(name)
	if _, ok := validRights[r]; !ok {
		return "", shared.NewDomainError("VALIDATION_ERROR", "Unknown right: "+name)
	}
	return r, nil
}

// RightSet is a set container over Right values.
type RightSet map[Right]struct{}

// NewRightSet builds a set from the given rights.
func NewRightSet(rights ...Right) RightSet {
	s := make(RightSet, len(rights))
	for _, r := range rights {
		s[r] = struct{}{}
	}
	return s
}

// ParseRightSet validates a list of right names.
func ParseRightSet(names []string) (RightSet, error) {
	s := make(RightSet, len(names))
	for _, name := range names {
		r, err := ParseRight(name)
		if err != nil {
			return nil, err
		}
		s[r] = struct{}{}
	}
	return s, nil
}

// Has reports whether the set contains r.
func (s RightSet) Has(r Right) bool {
	_, ok := s[r]
	return ok
}

// Add inserts r into the set.
func (s RightSet) Add(r Right) {
	s[r] = struct{}{}
}

// Equal reports whether two sets contain the same rights.
func (s RightSet) Equal(other RightSet) bool {
	if len(s) != len(other) {
		return false
	}
	for r := range s {
		if !other.Has(r) {
			return false
		}
	}
	return true
}

// Normalized returns a copy with the implied-read rule applied: any right
// stronger than select implies read access to the same documents.
func (s RightSet) Normalized() RightSet {
	out := make(RightSet, len(s)+1)
	for r := range s {
		out[r] = struct{}{}
	}
	for r := range s {
		if r != RightSelect && r != RightRead {
			out[RightRead] = struct{}{}
			break
		}
	}
	return out
}

// Sorted returns the rights in canonical order for deterministic output.
func (s RightSet) Sorted() []Right {
	out := make([]Right, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return rightRank(out[i]) < rightRank(out[j]) })
	return out
}

// Strings returns the sorted right names.
func (s RightSet) Strings() []string {
	rights := s.Sorted()
	out := make([]string, len(rights))
	for i, r := range rights {
		out[i] = string(r)
	}
	return out
}

func rightRank(r Right) int {
	for i, known := range AllRights {
		if known == r {
			return i
		}
	}
	return len(AllRights)
}
