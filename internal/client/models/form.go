package models

import (
	"fmt"
	"slices"
	"strings"
)

// AbsenceType is the reason a driver is not working on a given day.
type AbsenceType string

const (
	AbsenceMaintenance AbsenceType = "MAINTENANCE"
	AbsenceSickness    AbsenceType = "SICKNESS"
	AbsenceOther       AbsenceType = "OTHER"
)

// DefaultAbsenceType is preselected on every new form.
const DefaultAbsenceType = AbsenceMaintenance

// AbsenceTypes lists the valid values in display order.
var AbsenceTypes = []AbsenceType{AbsenceMaintenance, AbsenceSickness, AbsenceOther}

func (a AbsenceType) Valid() bool {
	return slices.Contains(AbsenceTypes, a)
}

// ParseAbsenceType accepts any letter case.
func ParseAbsenceType(s string) (AbsenceType, error) {
	a := AbsenceType(strings.ToUpper(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("unknown absence type %q", s)
	}
	return a, nil
}

// StatusForm is the daily status a driver submits once per calendar day.
//
// Status true means active: Load, Mileage and DeliveryAreas are required.
// Status false means absent: AbsenceType (and OtherReason for OTHER) is
// required instead.
type StatusForm struct {
	Date          string      `json:"date"`
	Time          string      `json:"time"`
	Status        bool        `json:"status"`
	Load          FlexString  `json:"load"`
	Mileage       FlexString  `json:"mileage"`
	DeliveryAreas []string    `json:"delivery_areas"`
	AbsenceType   AbsenceType `json:"absence_type"`
	OtherReason   string      `json:"otherReason"`
}

// NewStatusForm returns an empty active form for the given day and time.
func NewStatusForm(day, wallTime string) StatusForm {
	return StatusForm{
		Date:          day,
		Time:          wallTime,
		Status:        true,
		DeliveryAreas: []string{},
		AbsenceType:   DefaultAbsenceType,
	}
}

// Clone returns a deep copy.
func (f StatusForm) Clone() StatusForm {
	c := f
	c.DeliveryAreas = append([]string{}, f.DeliveryAreas...)
	return c
}

// StatusLabel is "Active" or "Absent".
func (f StatusForm) StatusLabel() string {
	if f.Status {
		return "Active"
	}
	return "Absent"
}

// SubmittedFormRecord is a status form persisted by the backend.
type SubmittedFormRecord struct {
	ID     FlexString `json:"id"`
	Driver FlexString `json:"driver,omitempty"`
	StatusForm
}
