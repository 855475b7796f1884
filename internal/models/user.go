package models

const (
	RoleViewer = "viewer"
	RoleAdmin  = "admin"
)

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}
