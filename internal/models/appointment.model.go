package models

import "time"

type Appointment struct {
	BaseModel
	PatientID   int       `gorm:"type:integer;not null;index" json:"patient_id"`
	ProviderID  int       `gorm:"type:integer;not null;index" json:"provider_id"`
	DateTime    time.Time `gorm:"not null"                    json:"date_time"`
	Description string    `gorm:"type:text;not null"          json:"description"`
}

type AppointmentCreate struct {
	PatientID   int
	ProviderID  int
	DateTime    time.Time
	Description string
}

func (a AppointmentCreate) NewRecord() *Appointment {
	return &Appointment{
		PatientID:   a.PatientID,
		ProviderID:  a.ProviderID,
		DateTime:    a.DateTime,
		Description: a.Description,
	}
}

func (a AppointmentCreate) References() []Reference {
	return []Reference{
		{Field: "patient_id", ID: a.PatientID},
		{Field: "provider_id", ID: a.ProviderID},
	}
}
