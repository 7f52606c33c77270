package spawn

import (
	"fmt"
	"strings"
)

// DefaultNamespace is used for identifiers written without a namespace.
const DefaultNamespace = "spreadspawnpoints"

// Built-in generator identifiers.
var (
	VanillaID = MustParseIdentifier("vanilla")
	RandomID  = MustParseIdentifier("random")
	GridID    = MustParseIdentifier("grid")
	SpringID  = MustParseIdentifier("spring")
)

// Identifier names a registered generator type, "namespace:path".
// Stable across save/load.
type Identifier struct {
	Namespace string
	Path      string
}

// NewIdentifier creates an identifier without validation.
func NewIdentifier(namespace, path string) Identifier {
	return Identifier{Namespace: namespace, Path: path}
}

// ParseIdentifier parses "namespace:path" or "path" (DefaultNamespace).
// Allowed characters: a-z 0-9 _ - . in both parts, plus / in the path.
func ParseIdentifier(s string) (Identifier, error) {
	namespace, path, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		namespace, path = DefaultNamespace, namespace
	}

	if namespace == "" || path == "" {
		return Identifier{}, fmt.Errorf("invalid identifier %q: empty namespace or path", s)
	}
	if !validIdentifierPart(namespace, false) {
		return Identifier{}, fmt.Errorf("invalid identifier %q: bad namespace %q", s, namespace)
	}
	if !validIdentifierPart(path, true) {
		return Identifier{}, fmt.Errorf("invalid identifier %q: bad path %q", s, path)
	}

	return Identifier{Namespace: namespace, Path: path}, nil
}

// MustParseIdentifier is ParseIdentifier for constants; panics on error.
func MustParseIdentifier(s string) Identifier {
	id, err := ParseIdentifier(s)
	if err != nil {
		panic(err)
	}
	return id
}

func validIdentifierPart(s string, allowSlash bool) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == '_', r == '-', r == '.':
		case r == '/' && allowSlash:
		default:
			return false
		}
	}
	return true
}

// IsZero reports whether the identifier is unset.
func (id Identifier) IsZero() bool {
	return id.Namespace == "" && id.Path == ""
}

func (id Identifier) String() string {
	return id.Namespace + ":" + id.Path
}
