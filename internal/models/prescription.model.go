package models

type Prescription struct {
	BaseModel
	PatientID    int    `gorm:"type:integer;not null;index" json:"patient_id"`
	Medication   string `gorm:"type:text;not null"          json:"medication"`
	Dosage       string `gorm:"type:text;not null"          json:"dosage"`
	Instructions string `gorm:"type:text;not null"          json:"instructions"`
}

type PrescriptionCreate struct {
	PatientID    int
	Medication   string
	Dosage       string
	Instructions string
}

func (p PrescriptionCreate) NewRecord() *Prescription {
	return &Prescription{
		PatientID:    p.PatientID,
		Medication:   p.Medication,
		Dosage:       p.Dosage,
		Instructions: p.Instructions,
	}
}

func (p PrescriptionCreate) References() []Reference {
	return []Reference{{Field: "patient_id", ID: p.PatientID}}
}
