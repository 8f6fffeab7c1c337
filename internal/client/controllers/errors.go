package controllers

import "errors"

var (
	// ErrBusy is returned when the same operation is already in flight.
	ErrBusy = errors.New("operation already in progress")
	// ErrNotEditable is returned by mutators when no form is being edited.
	ErrNotEditable = errors.New("form is not editable")
	// ErrEmptyRecord is returned when the backend accepted a form but sent
	// no record back.
	ErrEmptyRecord = errors.New("backend returned no record")
)
