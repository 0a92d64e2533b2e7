package models

type BillingRecord struct {
	BaseModel
	PatientID            int    `gorm:"type:integer;not null;index" json:"patient_id"`
	Service              string `gorm:"type:text;not null"          json:"service"`
	Amount               int    `gorm:"type:integer;not null"       json:"amount"` // no sign or range constraint
	InsuranceClaimStatus string `gorm:"type:text;not null"          json:"insurance_claim_status"`
}

type BillingRecordCreate struct {
	PatientID            int
	Service              string
	Amount               int
	InsuranceClaimStatus string
}

func (b BillingRecordCreate) NewRecord() *BillingRecord {
	return &BillingRecord{
		PatientID:            b.PatientID,
		Service:              b.Service,
		Amount:               b.Amount,
		InsuranceClaimStatus: b.InsuranceClaimStatus,
	}
}

func (b BillingRecordCreate) References() []Reference {
	return []Reference{{Field: "patient_id", ID: b.PatientID}}
}
