package api

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type RegisterResponse struct {
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the wire shape of a successful local or federated login.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	AccountID    string `json:"accountId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	IsFederated  bool   `json:"isFederated"`
}

type LogoutRequest struct{}

type LogoutResponse struct {
	Revoked int64 `json:"revoked"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type ChangePasswordResponse struct{}

type GetProfileRequest struct{}

type ProfileResponse struct {
	AccountID   string `json:"accountId"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	IsFederated bool   `json:"isFederated"`
}

// UpdateProfileRequest leaves a name unchanged when it is omitted or blank.
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}
