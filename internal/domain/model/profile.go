package model

// UserProfile is the backend's view of the signed-in account. It is cached
// locally alongside the bearer token and cleared together with it.
type UserProfile struct {
	ID        string `json:"id"`
	Nickname  string `json:"nickname"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatar_url"`
	Pro       bool   `json:"pro"`
}

// Session pairs the bearer token with the profile it authenticates.
// Produced by the login and registration endpoints.
type Session struct {
	Token string
	User  UserProfile
}
