package models

// Session is the subset of a User cached for the authenticated identity.
// It never carries the password hash.
type Session struct {
	ID         string   `json:"id"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	Avatar     string   `json:"avatar"`
	Bio        string   `json:"bio"`
	Role       Role     `json:"role"`
	Followers  []string `json:"followers"`
	Following  []string `json:"following"`
	PostsCount int      `json:"postsCount"`
}

// NewSession builds a session snapshot from a stored user.
func NewSession(u *User) Session {
	role := u.Role
	if role == "" {
		role = RoleUser
	}
	return Session{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Avatar:     u.Avatar,
		Bio:        u.Bio,
		Role:       role,
		Followers:  nonNil(u.Followers),
		Following:  nonNil(u.Following),
		PostsCount: u.PostsCount,
	}
}

// IsAdmin reports whether the session holds the admin role.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

func nonNil(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
