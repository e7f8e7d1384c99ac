package patientRepo

import "clinicore/models"

// PatientRepository exposes the minimal patient operations the scheduling
// core needs: substring lookup for promotion matching, record creation and
// removal (the conflict resolver rolls back patients it created itself).
type PatientRepository interface {
	GetByID(id string) (*models.Patient, error)
	FindByName(name string) ([]models.Patient, error)
	Create(patient *models.Patient) error
	Delete(id string) error
}
