package handlers

import (
	"net/http"

	patientRepo "clinicore/database/repository/patient"
	"clinicore/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var PatientRepo patientRepo.PatientRepository

// SetPatientRepo injects the patient repository.
func SetPatientRepo(r patientRepo.PatientRepository) {
	PatientRepo = r
}

// SearchPatients finds patients by name substring.
func SearchPatients(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}
	patients, err := PatientRepo.FindByName(q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "patient search failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"patients": patients})
}

// CreatePatient registers a new patient record.
func CreatePatient(c *gin.Context) {
	var input struct {
		FullName string `json:"fullName" binding:"required"`
		Phone    string `json:"phone"`
		Email    string `json:"email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	patient := models.Patient{
		ID:       uuid.New().String(),
		FullName: input.FullName,
		Phone:    input.Phone,
		Email:    input.Email,
	}
	if err := PatientRepo.Create(&patient); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create patient", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, patient)
}
