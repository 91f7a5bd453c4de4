package auth

import (
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/internal/features/profile"
	"github.com/jobhive/jobhive-server-go/internal/features/user"
	"github.com/jobhive/jobhive-server-go/internal/utils/jwt"
	"github.com/jobhive/jobhive-server-go/pkg/types"
)

// RegisterInput carries data for account registration.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Phone    *string
	UserType types.UserType
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResponse bundles the user with a fresh token pair.
type AuthResponse struct {
	User         *user.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

// TokenConfig holds signing secrets and expiries for issued tokens.
type TokenConfig struct {
	JWTSecret          string
	JWTRefreshSecret   string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Register creates a new account with its profile row and signs the caller in.
// Self-registration is limited to the user and employee roles.
func Register(db *gorm.DB, input RegisterInput, cfg TokenConfig) (*AuthResponse, error) {
	if input.FullName == "" || input.Email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	if !emailRegex.MatchString(input.Email) {
		return nil, ErrInvalidEmail
	}

	if len(input.Password) < 8 {
		return nil, ErrWeakPassword
	}

	userType := input.UserType
	if userType == "" {
		userType = types.UserTypeUser
	}
	if userType != types.UserTypeUser && userType != types.UserTypeEmployee {
		return nil, ErrInvalidUserType
	}

	var newUser user.User
	err := db.Transaction(func(tx *gorm.DB) error {
		created, err := user.Create(tx, user.CreateInput{
			FullName: input.FullName,
			Email:    input.Email,
			Password: input.Password,
			Phone:    input.Phone,
			UserType: userType,
		})
		if err != nil {
			return err
		}
		newUser = created

		// Profile exists from the moment the account does.
		_, err = profile.Ensure(tx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	accessToken, err := jwt.GenerateAccessToken(newUser.ID, cfg.JWTSecret, cfg.AccessTokenExpiry)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(newUser.ID, cfg.JWTRefreshSecret, cfg.RefreshTokenExpiry)
	if err != nil {
		return nil, err
	}

	newUser.RefreshToken = &refreshToken
	if err := db.Save(&newUser).Error; err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         &newUser,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Login authenticates a user and returns tokens.
func Login(db *gorm.DB, input LoginInput, cfg TokenConfig) (*AuthResponse, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	usr, err := user.GetByEmail(db, input.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !usr.ComparePassword(input.Password) {
		return nil, ErrInvalidCredentials
	}

	if !usr.Active && usr.UserType != types.UserTypeAdmin {
		return nil, ErrInactiveAccount
	}

	accessToken, err := jwt.GenerateAccessToken(usr.ID, cfg.JWTSecret, cfg.AccessTokenExpiry)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(usr.ID, cfg.JWTRefreshSecret, cfg.RefreshTokenExpiry)
	if err != nil {
		return nil, err
	}

	usr.RefreshToken = &refreshToken
	if err := db.Save(&usr).Error; err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         &usr,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout clears the refresh token for a user.
func Logout(db *gorm.DB, accessToken string, cfg TokenConfig) error {
	claims, err := jwt.VerifyToken(accessToken, cfg.JWTSecret)
	if err != nil {
		// Expired tokens still identify the account to log out.
		claims, err = jwt.DecodeWithoutVerify(accessToken)
		if err != nil {
			return ErrInvalidToken
		}
	}

	usr, err := user.Get(db, claims.UserID)
	if err != nil {
		return err
	}

	usr.RefreshToken = nil
	return db.Save(&usr).Error
}

// RefreshAccessToken rotates the token pair using a valid refresh token.
func RefreshAccessToken(db *gorm.DB, refreshToken string, cfg TokenConfig) (*jwt.TokenPair, error) {
	claims, err := jwt.VerifyToken(refreshToken, cfg.JWTRefreshSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	usr, err := user.Get(db, claims.UserID)
	if err != nil {
		return nil, err
	}

	if usr.RefreshToken == nil || *usr.RefreshToken != refreshToken {
		return nil, ErrInvalidToken
	}

	accessToken, err := jwt.GenerateAccessToken(usr.ID, cfg.JWTSecret, cfg.AccessTokenExpiry)
	if err != nil {
		return nil, err
	}

	newRefreshToken, err := jwt.GenerateRefreshToken(usr.ID, cfg.JWTRefreshSecret, cfg.RefreshTokenExpiry)
	if err != nil {
		return nil, err
	}

	usr.RefreshToken = &newRefreshToken
	if err := db.Save(&usr).Error; err != nil {
		return nil, err
	}

	return &jwt.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}
