package model

type RegisterForm struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type LoginForm struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VKLoginRequest struct {
	Code string `json:"code" binding:"required"`
}

type YandexLoginRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

// UserResponse is the public profile returned by the auth endpoints.
// Email is omitted for external-only accounts that never supplied one.
type UserResponse struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
}

func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

type UsersBatchRequest struct {
	IDs    []int64  `json:"ids"`
	Emails []string `json:"emails"`
}
