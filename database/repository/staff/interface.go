package staffRepo

import "clinicore/models"

// StaffRepository exposes operator account storage.
type StaffRepository interface {
	GetByEmail(email string) (*models.Staff, error)
	GetByID(id string) (*models.Staff, error)
	List() ([]models.Staff, error)
	Create(staff *models.Staff) error
	UpdateFCMToken(id, token string) error
}
