package staff

import "clinicore/models"

// StaffService handles operator sign-in and device registration.
type StaffService interface {
	SignIn(email, password string) (string, *models.Staff, error)
	RegisterDevice(staffID, fcmToken string) error
	GetByID(id string) (*models.Staff, error)
}
