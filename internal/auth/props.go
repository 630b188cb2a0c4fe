package auth

import "slices"

// PermissionImageGeneration unlocks the generateImage tool.
const PermissionImageGeneration = "image_generation"

// Claims are the identity-provider claims attached to a session.
type Claims struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

// User is the authenticated user as reported by the identity provider.
type User struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	FirstName         string `json:"firstName,omitempty"`
	LastName          string `json:"lastName,omitempty"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
	EmailVerified     bool   `json:"emailVerified"`
}

// Permissions is the set of permission slugs granted to a session.
type Permissions []string

func (p Permissions) Has(permission string) bool {
	return slices.Contains(p, permission)
}

// Props is the per-session identity context. It is built once when the
// session is established and treated as read-only afterwards.
type Props struct {
	User           User        `json:"user"`
	AccessToken    string      `json:"-"`
	RefreshToken   string      `json:"-"`
	Permissions    Permissions `json:"permissions"`
	OrganizationID string      `json:"organizationId,omitempty"`
	Claims         Claims      `json:"claims"`
}

// UserID is the backend user identifier, taken from the subject claim.
func (p Props) UserID() string {
	return p.Claims.Sub
}

// UserFromClaims derives the user record when the provider only returns
// standard OIDC claims.
func UserFromClaims(c Claims, emailVerified bool) User {
	return User{
		ID:                c.Sub,
		Email:             c.Email,
		FirstName:         c.GivenName,
		LastName:          c.FamilyName,
		ProfilePictureURL: c.Picture,
		EmailVerified:     emailVerified,
	}
}
