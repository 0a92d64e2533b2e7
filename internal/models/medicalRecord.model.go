package models

type MedicalRecord struct {
	BaseModel
	PatientID int    `gorm:"type:integer;not null;index" json:"patient_id"`
	Document  string `gorm:"type:text;not null"          json:"document"`
}

type MedicalRecordCreate struct {
	PatientID int
	Document  string
}

func (m MedicalRecordCreate) NewRecord() *MedicalRecord {
	return &MedicalRecord{
		PatientID: m.PatientID,
		Document:  m.Document,
	}
}

func (m MedicalRecordCreate) References() []Reference {
	return []Reference{{Field: "patient_id", ID: m.PatientID}}
}
