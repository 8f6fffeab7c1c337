// Package validation checks user input before it is sent to the backend.
// Validators are pure and return every problem at once, keyed by field.
package validation

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/driverportal/internal/client/models"
	"github.com/dmitrijs2005/driverportal/internal/timex"
)

// Field names a form input. Values match the backend's wire names.
type Field string

const (
	FieldLoad          Field = "load"
	FieldMileage       Field = "mileage"
	FieldDeliveryAreas Field = "delivery_areas"
	FieldAbsenceType   Field = "absence_type"
	FieldOtherReason   Field = "otherReason"

	FieldFirstName   Field = "first_name"
	FieldLastName    Field = "last_name"
	FieldDateOfBirth Field = "date_of_birth"
	FieldAccessCode  Field = "access_code"
)

// AccessCodeLength is the exact length of a driver access code.
const AccessCodeLength = 8

const (
	MsgLoadNotWhole        = "Load must be a whole number"
	MsgMileageNotWhole     = "Mileage must be a whole number"
	MsgNoDeliveryAreas     = "Add at least one delivery area"
	MsgNoAbsenceType       = "Please select a reason for absence"
	MsgNoOtherReason       = "Please specify the reason"
	MsgFirstNameRequired   = "First name is required"
	MsgLastNameRequired    = "Last name is required"
	MsgDateOfBirthRequired = "Date of birth is required"
	MsgDateOfBirthInvalid  = "Date of birth must be a valid date"
	MsgAccessCodeRequired  = "Access code is required"
	MsgAccessCodeLength    = "Access code must be 8 characters long"
)

var wholeNumber = regexp.MustCompile(`^\d+$`)

// FieldErrors maps a field to its error message. An empty map means valid.
type FieldErrors map[Field]string

func (e FieldErrors) Empty() bool { return len(e) == 0 }

// Fields returns the offending fields in a stable order.
func (e FieldErrors) Fields() []Field {
	out := make([]Field, 0, len(e))
	for f := range e {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Messages returns the error messages ordered by field.
func (e FieldErrors) Messages() []string {
	out := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		out = append(out, e[f])
	}
	return out
}

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		parts = append(parts, string(f)+": "+e[f])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Err returns e as an error, or nil when there is nothing to report.
func (e FieldErrors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

// ValidateStatusForm checks a daily status form. Active days need load,
// mileage and at least one area; absent days need a reason.
func ValidateStatusForm(f models.StatusForm) FieldErrors {
	errs := FieldErrors{}

	if f.Status {
		if !wholeNumber.MatchString(string(f.Load)) {
			errs[FieldLoad] = MsgLoadNotWhole
		}
		if !wholeNumber.MatchString(string(f.Mileage)) {
			errs[FieldMileage] = MsgMileageNotWhole
		}
		if len(f.DeliveryAreas) == 0 {
			errs[FieldDeliveryAreas] = MsgNoDeliveryAreas
		}
		return errs
	}

	if !f.AbsenceType.Valid() {
		errs[FieldAbsenceType] = MsgNoAbsenceType
	}
	if f.AbsenceType == models.AbsenceOther && strings.TrimSpace(f.OtherReason) == "" {
		errs[FieldOtherReason] = MsgNoOtherReason
	}
	return errs
}

// ValidateCredentials checks the login form.
func ValidateCredentials(c models.Credentials) FieldErrors {
	errs := FieldErrors{}
	c = c.Normalize()

	if c.FirstName == "" {
		errs[FieldFirstName] = MsgFirstNameRequired
	}
	if c.LastName == "" {
		errs[FieldLastName] = MsgLastNameRequired
	}

	switch {
	case c.DateOfBirth == "":
		errs[FieldDateOfBirth] = MsgDateOfBirthRequired
	default:
		if _, err := time.Parse(timex.DayLayout, c.DateOfBirth); err != nil {
			errs[FieldDateOfBirth] = MsgDateOfBirthInvalid
		}
	}

	switch {
	case c.AccessCode == "":
		errs[FieldAccessCode] = MsgAccessCodeRequired
	case len([]rune(c.AccessCode)) != AccessCodeLength:
		errs[FieldAccessCode] = MsgAccessCodeLength
	}
	return errs
}
