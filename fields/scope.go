package fields

import "hermannm.dev/enumnames"

// ScopeKind tells which document a field is stored in, relative to the searched document.
type ScopeKind uint8

const (
	ScopeRoot ScopeKind = iota
	ScopeNested
	ScopeParent
	ScopeChild
)

var scopeKindNames = enumnames.NewMap(map[ScopeKind]string{
	ScopeRoot:   "root",
	ScopeNested: "nested",
	ScopeParent: "parent",
	ScopeChild:  "child",
})

func (kind ScopeKind) String() string {
	return scopeKindNames.GetNameOrFallback(kind, "INVALID_SCOPE_KIND")
}

func (kind ScopeKind) MarshalJSON() ([]byte, error) {
	return scopeKindNames.MarshalToNameJSON(kind)
}

func (kind *ScopeKind) UnmarshalJSON(bytes []byte) error {
	return scopeKindNames.UnmarshalFromNameJSON(bytes, kind)
}

// Scope identifies the owner of a field: the root document, a nested object path, or a related
// parent/child document type. The zero value is the root scope.
type Scope struct {
	Kind ScopeKind `json:"kind"`
	// Nested path for ScopeNested, document type for ScopeParent and ScopeChild.
	Path string `json:"path,omitempty"`
}

var RootScope = Scope{Kind: ScopeRoot}

func NestedScope(path string) Scope {
	return Scope{Kind: ScopeNested, Path: path}
}

func ParentScope(docType string) Scope {
	return Scope{Kind: ScopeParent, Path: docType}
}

func ChildScope(docType string) Scope {
	return Scope{Kind: ScopeChild, Path: docType}
}

func (scope Scope) IsRoot() bool {
	return scope.Kind == ScopeRoot
}

// IsRelatedType is true for parent and child document scopes.
func (scope Scope) IsRelatedType() bool {
	return scope.Kind == ScopeParent || scope.Kind == ScopeChild
}

func (scope Scope) String() string {
	if scope.IsRoot() {
		return scope.Kind.String()
	}
	return scope.Kind.String() + " '" + scope.Path + "'"
}
