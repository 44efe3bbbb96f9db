package mobbin

// Session is the payload returned by the upstream auth endpoints after a
// successful credential exchange. AccessToken is the bearer credential used
// to authorize data requests.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         User   `json:"user"`
}

// User identifies the account the session belongs to.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// App is a single app record from the upstream data resource.
type App struct {
	ID          string `json:"id"`
	Name        string `json:"appName"`
	CompanyName string `json:"companyName,omitempty"`
	Platform    string `json:"platform"`
	LogoURL     string `json:"logoUrl,omitempty"`
	Category    string `json:"appCategory,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}
