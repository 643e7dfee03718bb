package auth

// User is the authenticated user's profile as reported by the service.
type User struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	Preferences map[string]any `json:"preferences"`
	CreatedAt   string         `json:"created_at,omitempty"`
	LastLogin   string         `json:"last_login,omitempty"`
	IsActive    bool           `json:"is_active"`
}

// OnboardingComplete reports whether the user has finished the one-time
// preference setup. An empty or absent preferences map means onboarding is
// still pending; the router depends on this signal.
func (u *User) OnboardingComplete() bool {
	return len(u.Preferences) > 0
}

// Session is the authenticated identity held by the client. A Session is
// immutable once installed: state changes replace the whole value rather
// than mutating fields in place, so readers never observe a torn session.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         User
}
