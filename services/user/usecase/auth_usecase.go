package usecase

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"kursor/services/user/models"
	"kursor/services/user/repository"
	"kursor/shared/middleware"
	sharedmodels "kursor/shared/models"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted on change
const MinPasswordLength = 6

// maxImageLength is the longest stored image returned as-is on login
const maxImageLength = 300

var (
	ErrUserExists          = errors.New("user already exists with this email")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrPasswordTooShort    = fmt.Errorf("new password must be at least %d characters long", MinPasswordLength)
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrTokenRequired       = errors.New("token is required")
	ErrMissingCredentials  = errors.New("email and password are required")
	ErrMissingSignupFields = errors.New("all fields are required: name, email, and password")
	ErrMissingPasswords    = errors.New("current password and new password are required")
)

// AuthUsecase defines the interface for authentication business logic
type AuthUsecase interface {
	Signup(req *models.SignupRequest) (*models.AuthResponse, error)
	Login(req *models.LoginRequest) (*models.AuthResponse, error)
	Validate(token string) (*sharedmodels.Identity, error)
	ChangePassword(userID string, req *models.ChangePasswordRequest) error
}

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo   repository.UserRepository
	jwtConfig  *middleware.JWTConfig
	bcryptCost int
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(userRepo repository.UserRepository, jwtConfig *middleware.JWTConfig) AuthUsecase {
	return &authUsecase{
		userRepo:   userRepo,
		jwtConfig:  jwtConfig,
		bcryptCost: 10,
	}
}

// Signup registers a password account. An existing account without a
// password (created through OAuth) is claimed instead of duplicated.
func (a *authUsecase) Signup(req *models.SignupRequest) (*models.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, ErrMissingSignupFields
	}

	existing, err := a.userRepo.GetByEmail(email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil && existing.HasPassword() {
		return nil, ErrUserExists
	}

	hashedPassword, err := a.hashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := existing
	if user == nil {
		user = &models.User{Email: email}
	}
	user.Name = name
	user.Password = hashedPassword
	user.Image = initial(name)

	if existing == nil {
		err = a.userRepo.Create(user)
	} else {
		err = a.userRepo.Save(user)
	}
	if errors.Is(err, repository.ErrEmailTaken) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return a.authResponse(user, user.Image)
}

// Login checks the password and issues a fresh token
func (a *authUsecase) Login(req *models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := a.userRepo.GetByEmail(email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.HasPassword() {
		return nil, ErrInvalidCredentials
	}

	if err := a.verifyPassword(user.Password, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	image := user.Image
	if len(image) > maxImageLength {
		displayName := user.Name
		if displayName == "" {
			displayName = "User"
		}
		image = "https://ui-avatars.com/api/?format=png&name=" + strings.ReplaceAll(url.QueryEscape(displayName), "+", "%20")
	}

	return a.authResponse(user, image)
}

// Validate checks a user token and returns its identity
func (a *authUsecase) Validate(token string) (*sharedmodels.Identity, error) {
	if token == "" {
		return nil, ErrTokenRequired
	}
	claims, err := middleware.ValidateToken(token, a.jwtConfig)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &sharedmodels.Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

// ChangePassword replaces the password after checking the current one
func (a *authUsecase) ChangePassword(userID string, req *models.ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return ErrMissingPasswords
	}
	if len(req.NewPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := a.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if !user.HasPassword() {
		return repository.ErrUserNotFound
	}

	if err := a.verifyPassword(user.Password, req.CurrentPassword); err != nil {
		return ErrWrongPassword
	}

	hashedPassword, err := a.hashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := a.userRepo.UpdateFields(userID, map[string]interface{}{"password": hashedPassword}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (a *authUsecase) authResponse(user *models.User, image string) (*models.AuthResponse, error) {
	token, err := middleware.GenerateToken(user.ID, user.Email, a.jwtConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	account := user.ToAccount()
	account.Image = image
	return &models.AuthResponse{Success: true, User: account, Token: token}, nil
}

// hashPassword hashes a password using bcrypt
func (a *authUsecase) hashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// verifyPassword verifies a password against its hash
func (a *authUsecase) verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// initial is the default avatar: the upper-cased first letter of the name
func initial(name string) string {
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return ""
}
