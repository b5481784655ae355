package domain

type ContextKey string

const UserContextKey ContextKey = "user"

// User is the signed-in storefront account as carried by the session token
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	// ProviderToken is the identity provider ID token, never serialized
	ProviderToken string `json:"-"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// AuthSession is the result of a successful sign-in, sign-up or refresh
type AuthSession struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"-"`
	ExpiresIn    int64  `json:"expires_in"`
}
