package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eparask/courselab/internal/app/models"
	"github.com/eparask/courselab/internal/app/models/dto"
	"github.com/eparask/courselab/internal/pkg/apperrors"
	"github.com/eparask/courselab/internal/pkg/auth"
)

func setupTestAuthService() (*AuthService, *mockUserRepo, *mockTokenRepo) {
	users := newMockUserRepo()
	tokens := newMockTokenRepo()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "courselab-test",
	})
	svc := NewAuthService(users, tokens, jwtService, zerolog.Nop())
	return svc, users, tokens
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	registered, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "ada.lovelace",
		Password: "Analytical1!",
		Role:     models.RoleTeacher,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if registered.Token.AccessToken == "" || registered.Token.RefreshToken == "" {
		t.Error("registration did not issue a token pair")
	}
	if registered.Token.TokenType != "Bearer" {
		t.Errorf("token type = %q, want Bearer", registered.Token.TokenType)
	}
	if registered.User == nil || registered.User.Username != "ada.lovelace" {
		t.Fatalf("user = %+v", registered.User)
	}
	if registered.User.Password == "Analytical1!" {
		t.Error("password stored in plain text")
	}

	loggedIn, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "ada.lovelace",
		Password: "Analytical1!",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loggedIn.User.ID != registered.User.ID {
		t.Errorf("login returned user %d, want %d", loggedIn.User.ID, registered.User.ID)
	}
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	req := &dto.RegisterRequest{Username: "ada", Password: "Analytical1!", Role: models.RoleStudent}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := svc.Register(context.Background(), req)
	if !errors.Is(err, apperrors.ErrUsernameAlreadyTaken) {
		t.Errorf("expected ErrUsernameAlreadyTaken, got %v", err)
	}
}

func TestAuthService_Register_InvalidUsername(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	for _, username := range []string{"ab", "Ada", "ada lovelace", "ada!"} {
		_, err := svc.Register(context.Background(), &dto.RegisterRequest{
			Username: username, Password: "Analytical1!", Role: models.RoleStudent,
		})
		if !errors.Is(err, apperrors.ErrBadRequest) {
			t.Errorf("username %q: expected bad request, got %v", username, err)
		}
	}
}

func TestAuthService_Register_ShortPassword(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "ada", Password: "short", Role: models.RoleStudent,
	})
	if !errors.Is(err, apperrors.ErrBadRequest) {
		t.Errorf("expected bad request for a short password, got %v", err)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	if _, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "ada", Password: "Analytical1!", Role: models.RoleStudent,
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "ada", Password: "wrong-password"})
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "ghost", Password: "whatever123"})
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestAuthService_RefreshToken_SingleUse(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	registered, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "ada", Password: "Analytical1!", Role: models.RoleStudent,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	refreshed, err := svc.RefreshToken(context.Background(), registered.Token.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if refreshed.Token.RefreshToken == registered.Token.RefreshToken {
		t.Error("refresh reissued the same refresh token")
	}

	_, err = svc.RefreshToken(context.Background(), registered.Token.RefreshToken)
	if !errors.Is(err, apperrors.ErrTokenRevoked) {
		t.Errorf("expected ErrTokenRevoked on reuse, got %v", err)
	}
}

func TestAuthService_Logout_RevokesTokens(t *testing.T) {
	svc, _, tokens := setupTestAuthService()

	registered, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "ada", Password: "Analytical1!", Role: models.RoleStudent,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.Logout(context.Background(), registered.User.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	_, _, _, err = tokens.GetTokenByValue(context.Background(), registered.Token.RefreshToken)
	if !errors.Is(err, apperrors.ErrTokenRevoked) {
		t.Errorf("expected the refresh token to be revoked, got %v", err)
	}
}

func TestAuthService_GetProfile(t *testing.T) {
	svc, users, _ := setupTestAuthService()
	alice := users.addUser("alice", models.RoleStudent)

	profile, err := svc.GetProfile(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.Username != "alice" {
		t.Errorf("profile = %+v", profile)
	}
}
