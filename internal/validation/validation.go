package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"clinic/internal/models"
	"clinic/internal/utils"

	"github.com/go-playground/validator/v10"
)

var (
	validate = newValidator()
	dates    = utils.NewDateValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type userPayload struct {
	Username  *string `json:"username"   validate:"required"`
	Password  *string `json:"password"   validate:"required"`
	Email     *string `json:"email"      validate:"required,email"`
	FirstName *string `json:"first_name" validate:"required"`
	LastName  *string `json:"last_name"  validate:"required"`
}

type appointmentPayload struct {
	PatientID   *int    `json:"patient_id"  validate:"required"`
	ProviderID  *int    `json:"provider_id" validate:"required"`
	DateTime    *string `json:"date_time"   validate:"required"`
	Description *string `json:"description" validate:"required"`
}

type messagePayload struct {
	SenderID    *int    `json:"sender_id"    validate:"required"`
	RecipientID *int    `json:"recipient_id" validate:"required"`
	Content     *string `json:"content"      validate:"required"`
}

type medicalRecordPayload struct {
	PatientID *int    `json:"patient_id" validate:"required"`
	Document  *string `json:"document"   validate:"required"`
}

type prescriptionPayload struct {
	PatientID    *int    `json:"patient_id"   validate:"required"`
	Medication   *string `json:"medication"   validate:"required"`
	Dosage       *string `json:"dosage"       validate:"required"`
	Instructions *string `json:"instructions" validate:"required"`
}

type billingRecordPayload struct {
	PatientID            *int    `json:"patient_id"             validate:"required"`
	Service              *string `json:"service"                validate:"required"`
	Amount               *int    `json:"amount"                 validate:"required"`
	InsuranceClaimStatus *string `json:"insurance_claim_status" validate:"required"`
}

func User(raw []byte) (models.UserCreate, error) {
	var payload userPayload
	if err := check(raw, &payload); err != nil {
		return models.UserCreate{}, err
	}

	return models.UserCreate{
		Username:  *payload.Username,
		Password:  *payload.Password,
		Email:     *payload.Email,
		FirstName: *payload.FirstName,
		LastName:  *payload.LastName,
	}, nil
}

func Appointment(raw []byte) (models.AppointmentCreate, error) {
	var payload appointmentPayload
	verr := decode(raw, &payload)
	if verr.Has("body") {
		return models.AppointmentCreate{}, verr
	}

	verr = structErrors(verr, &payload)
	if payload.DateTime != nil && !verr.Has("date_time") {
		if _, ok := dates.Parse(*payload.DateTime); !ok {
			verr.Add("date_time", "invalid datetime format")
		}
	}
	if len(verr.Errors) > 0 {
		return models.AppointmentCreate{}, verr
	}

	dateTime, _ := dates.Parse(*payload.DateTime)
	return models.AppointmentCreate{
		PatientID:   *payload.PatientID,
		ProviderID:  *payload.ProviderID,
		DateTime:    dateTime,
		Description: *payload.Description,
	}, nil
}

func Message(raw []byte) (models.MessageCreate, error) {
	var payload messagePayload
	if err := check(raw, &payload); err != nil {
		return models.MessageCreate{}, err
	}

	return models.MessageCreate{
		SenderID:    *payload.SenderID,
		RecipientID: *payload.RecipientID,
		Content:     *payload.Content,
	}, nil
}

func MedicalRecord(raw []byte) (models.MedicalRecordCreate, error) {
	var payload medicalRecordPayload
	if err := check(raw, &payload); err != nil {
		return models.MedicalRecordCreate{}, err
	}

	return models.MedicalRecordCreate{
		PatientID: *payload.PatientID,
		Document:  *payload.Document,
	}, nil
}

func Prescription(raw []byte) (models.PrescriptionCreate, error) {
	var payload prescriptionPayload
	if err := check(raw, &payload); err != nil {
		return models.PrescriptionCreate{}, err
	}

	return models.PrescriptionCreate{
		PatientID:    *payload.PatientID,
		Medication:   *payload.Medication,
		Dosage:       *payload.Dosage,
		Instructions: *payload.Instructions,
	}, nil
}

// BillingRecord accepts any integer amount, zero and negative included.
func BillingRecord(raw []byte) (models.BillingRecordCreate, error) {
	var payload billingRecordPayload
	if err := check(raw, &payload); err != nil {
		return models.BillingRecordCreate{}, err
	}

	return models.BillingRecordCreate{
		PatientID:            *payload.PatientID,
		Service:              *payload.Service,
		Amount:               *payload.Amount,
		InsuranceClaimStatus: *payload.InsuranceClaimStatus,
	}, nil
}

// check decodes and validates payload, returning nil or a *ValidationError.
func check(raw []byte, payload any) error {
	verr := decode(raw, payload)
	if !verr.Has("body") {
		verr = structErrors(verr, payload)
	}
	if len(verr.Errors) > 0 {
		return verr
	}
	return nil
}

// decode fills payload from raw and reports every field whose JSON type does
// not match. Keys must match a json tag exactly. A mistyped field is dropped
// and decoding retried, since encoding/json only reports the first mismatch.
func decode(raw []byte, payload any) *models.ValidationError {
	verr := &models.ValidationError{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		verr.Add("body", "must be a JSON object")
		return verr
	}

	known := jsonKeys(payload)
	for key := range fields {
		if !known[key] {
			delete(fields, key)
		}
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		verr.Add("body", "must be a JSON object")
		return verr
	}

	for {
		err := json.Unmarshal(raw, payload)
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return verr
		}

		verr.Add(typeErr.Field, "must be "+describe(typeErr.Type))

		if _, ok := fields[typeErr.Field]; !ok {
			return verr
		}
		delete(fields, typeErr.Field)

		raw, err = json.Marshal(fields)
		if err != nil {
			return verr
		}
	}
}

func structErrors(verr *models.ValidationError, payload any) *models.ValidationError {
	err := validate.Struct(payload)

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return verr
	}

	for _, fieldErr := range fieldErrs {
		if verr.Has(fieldErr.Field()) {
			continue
		}
		verr.Add(fieldErr.Field(), reason(fieldErr.Tag()))
	}

	return verr
}

// jsonKeys lists the object keys payload accepts. encoding/json would also
// match them case-insensitively.
func jsonKeys(payload any) map[string]bool {
	t := reflect.TypeOf(payload).Elem()
	keys := make(map[string]bool, t.NumField())
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}

func reason(tag string) string {
	switch tag {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	default:
		return "failed " + tag + " check"
	}
}

func describe(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}

	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Bool:
		return "a boolean"
	default:
		return "a valid " + t.String()
	}
}
