package session

import (
	"fmt"

	"github.com/festivaz/web-gateway/internal/domain"
)

// userRoleFields is the precedence order in which a cached user record is
// searched for a role.
var userRoleFields = []string{"role", "rolePermissions", "roleName", "roles"}

// ResolveRole picks the role of a session. The first role field of the cached
// user holding a non-empty value decides, even when that value yields no
// usable name (an object without name or role, a list of objects); the result
// is then empty. Only a user with no such field falls back to fallback
// (usually the token's role claim). Lists resolve to their first element and
// objects to their name or role field.
func ResolveRole(user domain.CachedUser, fallback string) string {
	for _, field := range userRoleFields {
		value, ok := user[field]
		if !ok || isEmptyRoleValue(value) {
			continue
		}
		return normalizeRoleValue(value)
	}
	return fallback
}

func normalizeRoleValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		if len(v) == 0 {
			return ""
		}
		return scalarString(v[0])
	case []string:
		if len(v) == 0 {
			return ""
		}
		return v[0]
	case map[string]any:
		if name := scalarString(v["name"]); name != "" {
			return name
		}
		return scalarString(v["role"])
	default:
		return fmt.Sprint(v)
	}
}

func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func isEmptyRoleValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}
