package track

import "github.com/viant/taskly/internal/idgen"

// Owner identifies who requested a run.  Owners are compared by ID only;
// the label exists for diagnostics and never participates in scoping.
type Owner struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// NewOwner creates an owner with a generated identity.
func NewOwner(label string) *Owner {
	return &Owner{ID: idgen.New(), Label: label}
}

// Equal reports whether both owners denote the same identity.  A nil owner
// equals nothing, including another nil owner.
func (o *Owner) Equal(other *Owner) bool {
	if o == nil || other == nil {
		return false
	}
	if o == other {
		return true
	}
	return o.ID == other.ID
}
