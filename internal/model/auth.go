package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleTeacher Role = "TEACHER"
	RolePupil   Role = "PUPIL"
)

func (r Role) Valid() bool {
	return r == RoleTeacher || r == RolePupil
}

// User is an account identified by login#code.
type User struct {
	ID           string    `json:"id" bson:"_id"` // login#code
	Login        string    `json:"login" bson:"login"`
	Code         string    `json:"code" bson:"code"`
	Name         string    `json:"name" bson:"name"`
	Role         Role      `json:"role" bson:"role"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// Claims are the JWT claims of every issued token
type Claims struct {
	Login string `json:"login"`
	Code  string `json:"code"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

// RegisterRequest is the request body for account creation
type RegisterRequest struct {
	Login    string `json:"login"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Login    string `json:"login"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login or registration
type LoginResponse struct {
	Token string `json:"token"`
	Login string `json:"login"`
	Code  string `json:"code"`
	Role  Role   `json:"role"`
}
