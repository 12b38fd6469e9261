package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"quizlive/internal/model"
	"quizlive/internal/repository"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// AuthService registers accounts and issues and checks tokens
type AuthService struct {
	users     repository.UserRepo
	jwtSecret []byte
	tokenTTL  time.Duration
	random    io.Reader
}

// NewAuthService creates a new auth service
func NewAuthService(users repository.UserRepo, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(secret),
		tokenTTL:  tokenTTL,
		random:    rand.Reader,
	}
}

// Register creates an account under a fresh 4-digit code and returns a token for it
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.LoginResponse, error) {
	if err := requireText("login", req.Login); err != nil {
		return nil, err
	}
	if strings.ContainsAny(req.Login, "#-") {
		return nil, model.InvalidField("login", "must not contain '#' or '-'")
	}
	if len(req.Password) < 6 {
		return nil, model.InvalidField("password", "needs at least 6 characters")
	}
	if !req.Role.Valid() {
		return nil, model.InvalidField("role", "must be TEACHER or PUPIL")
	}

	code, err := s.generateCode(ctx, req.Login)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := &model.User{
		Login:        req.Login,
		Code:         code,
		Name:         req.Name,
		Role:         req.Role,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, model.TransientStore("create user", err)
	}
	return s.respond(user)
}

// Login checks the password of login#code and returns a token
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.users.Get(ctx, req.Login, req.Code)
	if err != nil {
		return nil, model.TransientStore("get user", err)
	}
	if user == nil {
		return nil, model.Unauthorized("invalid login, code or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, model.Unauthorized("invalid login, code or password")
	}
	return s.respond(user)
}

func (s *AuthService) respond(user *model.User) (*model.LoginResponse, error) {
	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{
		Token: token,
		Login: user.Login,
		Code:  user.Code,
		Role:  user.Role,
	}, nil
}

// IssueToken signs a token for user
func (s *AuthService) IssueToken(user *model.User) (string, error) {
	now := time.Now()
	claims := &model.Claims{
		Login: user.Login,
		Code:  user.Code,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  model.ParticipantKey(user.Login, user.Code),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.tokenTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.tokenTTL))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken parses a token and returns its claims
func (s *AuthService) ValidateToken(tokenString string) (*model.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, model.Unauthorized("invalid or expired token")
	}

	claims, ok := token.Claims.(*model.Claims)
	if !ok || !token.Valid {
		return nil, model.Unauthorized("invalid or expired token")
	}
	return claims, nil
}

// CheckCredentials validates token and that it was issued to login#code
func (s *AuthService) CheckCredentials(token, login, code string) (*model.Claims, error) {
	claims, err := s.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if claims.Login != login || claims.Code != code {
		return nil, model.Unauthorized("token does not belong to %s", model.ParticipantKey(login, code))
	}
	return claims, nil
}

// generateCode draws a 4-digit code that is free for login
func (s *AuthService) generateCode(ctx context.Context, login string) (string, error) {
	for attempts := 0; attempts < 10; attempts++ {
		b := make([]byte, 2)
		if _, err := io.ReadFull(s.random, b); err != nil {
			return "", err
		}
		code := fmt.Sprintf("%04d", (int(b[0])<<8|int(b[1]))%10000)

		exists, err := s.users.Exists(ctx, login, code)
		if err != nil {
			return "", model.TransientStore("check user code", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique code for %s", login)
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return model.MissingField(field)
	}
	return nil
}
