package seed

import (
	"time"

	"clinic/config"
	"clinic/internal/database"
	"clinic/internal/logger"
	. "clinic/internal/models"

	"gorm.io/gorm"
)

// Seed loads a patient, a provider and one record of each kind between them.
// Users that already exist are left alone and no records are added for them.
func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	users := []User{
		{
			Username:  "ada",
			Password:  "password",
			Email:     "ada.lovelace@example.com",
			FirstName: "Ada",
			LastName:  "Lovelace",
		}, {
			Username:  "drgrace",
			Password:  "password",
			Email:     "grace.hopper@example.com",
			FirstName: "Grace",
			LastName:  "Hopper",
		},
	}

	for _, user := range users {
		var existingUser User
		if err := db.First(&existingUser, "username = ?", user.Username).Error; err == nil {
			log.Info("User already exists, skipping seed", "username", user.Username)
			return nil
		}
	}

	tx := db.Begin()
	defer database.TXDefer(tx, log)

	for i := range users {
		log.Info("Seeding user", "username", users[i].Username)
		if err := tx.Create(&users[i]).Error; err != nil {
			return log.Err("failed to create user", tx.AddError(err), "username", users[i].Username)
		}
	}

	patient, provider := users[0].ID, users[1].ID
	records := []any{
		&Appointment{
			PatientID:   patient,
			ProviderID:  provider,
			DateTime:    time.Now().UTC().Add(7 * 24 * time.Hour).Truncate(time.Hour),
			Description: "Annual checkup",
		},
		&Message{
			SenderID:    provider,
			RecipientID: patient,
			Content:     "Please arrive ten minutes early.",
		},
		&MedicalRecord{
			PatientID: patient,
			Document:  "No known allergies.",
		},
		&Prescription{
			PatientID:    patient,
			Medication:   "Ibuprofen",
			Dosage:       "200mg",
			Instructions: "As needed, at most three times a day.",
		},
		&BillingRecord{
			PatientID:            patient,
			Service:              "Consultation",
			Amount:               12000,
			InsuranceClaimStatus: "pending",
		},
	}

	for _, record := range records {
		if err := tx.Create(record).Error; err != nil {
			return log.Err("failed to create record", tx.AddError(err))
		}
	}

	log.Info("Seed complete", "users", len(users), "records", len(records))
	return nil
}
