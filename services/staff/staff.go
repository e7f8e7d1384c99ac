package staff

import (
	"context"
	"errors"
	"fmt"
	"time"

	staffRepo "clinicore/database/repository/staff"
	"clinicore/models"
	"clinicore/utils"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for a failed sign-in attempt without
// leaking whether the account exists.
var ErrInvalidCredentials = errors.New("invalid email or password")

// DefaultStaffService implements StaffService.
type DefaultStaffService struct {
	Repo staffRepo.StaffRepository
}

// SignIn verifies the password and issues a JWT, caching the token hash so
// the auth middleware can revoke sessions.
func (s *DefaultStaffService) SignIn(email, password string) (string, *models.Staff, error) {
	member, err := s.Repo.GetByEmail(email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(member.ID, member.Email, 24*time.Hour)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	cache := utils.GetAuthCacheClient()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	key := utils.AuthCachePrefix + utils.HashToken(token)
	if err := cache.Set(ctx, key, member.ID, 24*time.Hour).Err(); err != nil {
		return "", nil, fmt.Errorf("failed to cache auth session: %w", err)
	}

	return token, member, nil
}

// RegisterDevice stores the FCM push token for the staff device.
func (s *DefaultStaffService) RegisterDevice(staffID, fcmToken string) error {
	return s.Repo.UpdateFCMToken(staffID, fcmToken)
}

// GetByID fetches a staff account.
func (s *DefaultStaffService) GetByID(id string) (*models.Staff, error) {
	return s.Repo.GetByID(id)
}
