package domain

// CachedUser is the user profile returned by the backend at login time. Its
// shape is owned by the backend, so it is kept as a loose JSON object.
type CachedUser map[string]any

// ID returns the user identifier when present.
func (u CachedUser) ID() string {
	if u == nil {
		return ""
	}
	if id, ok := u["id"].(string); ok {
		return id
	}
	return ""
}

// Token returns the bearer token embedded in a login response.
func (u CachedUser) Token() string {
	if u == nil {
		return ""
	}
	if token, ok := u["token"].(string); ok {
		return token
	}
	return ""
}
