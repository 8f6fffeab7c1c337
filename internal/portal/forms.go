package portal

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/driverportal/internal/client/api"
	"github.com/dmitrijs2005/driverportal/internal/client/controllers"
	"github.com/dmitrijs2005/driverportal/internal/client/models"
	"github.com/dmitrijs2005/driverportal/internal/client/validation"
	"github.com/dmitrijs2005/driverportal/internal/timex"
)

// errorKey holds a form-wide error in formData.Errors.
const errorKey = "_"

const msgFormBusy = "The form is already being submitted. Please wait."

type formData struct {
	ID          string
	Action      string
	AreasAction string
	Form        models.StatusForm
	Errors      map[string]string
}

// newDialog builds a form controller for a single page view. Pages that
// change data share s.form instead so only one of them runs at a time.
func (s *Server) newDialog() *controllers.StatusFormController {
	return controllers.NewStatusFormController(s.dialogOptions())
}

func (s *Server) dialogOptions() controllers.StatusFormOptions {
	return controllers.StatusFormOptions{
		Shifts: s.shifts,
		Drafts: s.drafts,
		Clock:  s.clock,
		Log:    s.log,
		// drafts are saved explicitly on every post
		AutoSaveInterval: time.Hour,
	}
}

// applyPosted copies the posted fields into the open dialog. shown_status
// is the status the page was rendered with; switching an edited record from
// absent back to active restores its stored activity fields.
func applyPosted(c *controllers.StatusFormController, r *http.Request) error {
	posted := r.PostFormValue("status") != "absent"
	shown := posted
	if r.PostForm.Has("shown_status") {
		shown = r.PostFormValue("shown_status") != "absent"
	}

	if err := c.SetStatus(shown); err != nil {
		return err
	}
	if shown {
		if err := setActivity(c, r, true); err != nil {
			return err
		}
	}
	if err := c.SetStatus(posted); err != nil {
		return err
	}
	if !posted {
		return setAbsence(c, r)
	}
	if !shown {
		return setActivity(c, r, false)
	}
	return nil
}

// setActivity copies load, mileage and areas. Unless overwrite is set,
// blank posted values keep what the dialog already holds.
func setActivity(c *controllers.StatusFormController, r *http.Request, overwrite bool) error {
	load := strings.TrimSpace(r.PostFormValue("load"))
	mileage := strings.TrimSpace(r.PostFormValue("mileage"))
	areas := r.PostForm["delivery_areas"]

	if overwrite || load != "" {
		if err := c.SetLoad(load); err != nil {
			return err
		}
	}
	if overwrite || mileage != "" {
		if err := c.SetMileage(mileage); err != nil {
			return err
		}
	}
	if overwrite || len(areas) > 0 {
		return c.SetDeliveryAreas(areas)
	}
	return nil
}

func setAbsence(c *controllers.StatusFormController, r *http.Request) error {
	if at, err := models.ParseAbsenceType(r.PostFormValue("absence_type")); err == nil {
		if err := c.SetAbsenceType(at); err != nil {
			return err
		}
	}
	if c.View().Form.AbsenceType != models.AbsenceOther {
		return nil
	}
	return c.SetOtherReason(strings.TrimSpace(r.PostFormValue("otherReason")))
}

func (s *Server) formBusy(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusConflict, msgFormBusy)
}

// openNew opens today's form in the shared dialog and overlays the post.
// The caller closes the dialog when it gets one back.
func (s *Server) openNew(w http.ResponseWriter, r *http.Request) (*controllers.StatusFormController, bool) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Could not read the form.")
		return nil, false
	}
	if err := s.form.OpenNew(ctx, timex.Day(s.clock.Now())); err != nil {
		s.formBusy(w, r)
		return nil, false
	}
	if err := applyPosted(s.form, r); err != nil {
		s.form.Close()
		s.renderError(w, r, http.StatusBadRequest, "Could not read the form.")
		return nil, false
	}
	return s.form, true
}

func (s *Server) saveDraft(r *http.Request, c *controllers.StatusFormController) {
	if err := c.SaveDraft(r.Context()); err != nil {
		s.log.Warn(r.Context(), "failed to save draft", "error", err)
	}
}

func (s *Server) renderNewForm(w http.ResponseWriter, r *http.Request, status int, f models.StatusForm, errs map[string]string) {
	if errs == nil {
		errs = map[string]string{}
	}
	s.render(w, r, status, "form.html", "Daily status", formData{
		Action:      "/forms/new",
		AreasAction: "/forms/new/areas",
		Form:        f,
		Errors:      errs,
	})
}

func (s *Server) newForm(w http.ResponseWriter, r *http.Request) {
	c := s.newDialog()
	defer c.Close()
	if err := c.OpenNew(r.Context(), timex.Day(s.clock.Now())); err != nil {
		s.renderError(w, r, http.StatusInternalServerError, "Could not open the form.")
		return
	}
	s.renderNewForm(w, r, http.StatusOK, c.View().Form, nil)
}

func (s *Server) newFormSubmit(w http.ResponseWriter, r *http.Request) {
	c, ok := s.openNew(w, r)
	if !ok {
		return
	}
	defer c.Close()
	ctx := r.Context()

	if r.PostFormValue("action") == "save" {
		s.saveDraft(r, c)
		s.addFlash(w, r, flashSuccess, "Draft saved.")
		http.Redirect(w, r, "/forms/new", http.StatusSeeOther)
		return
	}

	_, err := c.Submit(ctx)
	if err == nil {
		s.addFlash(w, r, flashSuccess, controllers.MsgSubmitted)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	s.saveDraft(r, c)
	form := c.View().Form
	var fe validation.FieldErrors
	switch {
	case errors.As(err, &fe):
		s.renderNewForm(w, r, http.StatusUnprocessableEntity, form, fieldMap(fe))
	case s.handleUnauthorized(w, r, err):
	default:
		s.log.Error(ctx, "failed to submit form", "error", err)
		s.renderNewForm(w, r, http.StatusBadGateway, form, map[string]string{errorKey: controllers.MsgSubmitFailed})
	}
}

func (s *Server) newFormAddArea(w http.ResponseWriter, r *http.Request) {
	c, ok := s.openNew(w, r)
	if !ok {
		return
	}
	defer c.Close()

	if err := addArea(c, r); err != nil {
		s.saveDraft(r, c)
		s.renderNewForm(w, r, http.StatusUnprocessableEntity, c.View().Form,
			map[string]string{string(validation.FieldDeliveryAreas): controllers.MsgEmptyArea})
		return
	}
	s.saveDraft(r, c)
	http.Redirect(w, r, "/forms/new", http.StatusSeeOther)
}

func (s *Server) newFormRemoveArea(w http.ResponseWriter, r *http.Request) {
	c, ok := s.openNew(w, r)
	if !ok {
		return
	}
	defer c.Close()

	if err := c.RemoveDeliveryArea(r.PostFormValue("remove_area")); err != nil {
		s.log.Warn(r.Context(), "failed to remove area", "error", err)
	}
	s.saveDraft(r, c)
	http.Redirect(w, r, "/forms/new", http.StatusSeeOther)
}

// addArea adds the posted new_area. Adding an area makes the form active.
func addArea(c *controllers.StatusFormController, r *http.Request) error {
	if err := c.SetStatus(true); err != nil {
		return err
	}
	return c.AddDeliveryArea(r.PostFormValue("new_area"))
}

// recordFailed sends the browser back to the list with an error flash after
// a record could not be loaded.
func (s *Server) recordFailed(w http.ResponseWriter, r *http.Request, id string, err error) {
	if s.handleUnauthorized(w, r, err) {
		return
	}
	msg := "Could not load the form. Please try again."
	if errors.Is(err, api.ErrNotFound) {
		msg = "Form " + id + " not found."
	} else {
		s.log.Error(r.Context(), "failed to load form", "id", id, "error", err)
	}
	s.addFlash(w, r, flashError, msg)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) showForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.shifts.Get(r.Context(), id)
	if err != nil {
		s.recordFailed(w, r, id, err)
		return
	}
	s.render(w, r, http.StatusOK, "detail.html", "Form "+rec.ID.String(), rec)
}

func (s *Server) renderEditForm(w http.ResponseWriter, r *http.Request, status int, id string, f models.StatusForm, errs map[string]string) {
	if errs == nil {
		errs = map[string]string{}
	}
	s.render(w, r, status, "form.html", "Edit form "+id, formData{
		ID:          id,
		Action:      "/forms/" + id + "/edit",
		AreasAction: "/forms/" + id + "/edit/areas",
		Form:        f,
		Errors:      errs,
	})
}

func (s *Server) editForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c := s.newDialog()
	defer c.Close()
	if err := c.OpenEdit(r.Context(), id); err != nil {
		s.recordFailed(w, r, id, err)
		return
	}
	s.renderEditForm(w, r, http.StatusOK, id, c.View().Form, nil)
}

// openEdit opens record id in the shared dialog and overlays the post.
// The caller closes the dialog when it gets one back.
func (s *Server) openEdit(w http.ResponseWriter, r *http.Request) (*controllers.StatusFormController, string, bool) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Could not read the form.")
		return nil, "", false
	}
	if err := s.form.OpenEdit(r.Context(), id); err != nil {
		if errors.Is(err, controllers.ErrBusy) {
			s.formBusy(w, r)
		} else {
			s.recordFailed(w, r, id, err)
		}
		return nil, "", false
	}
	if err := applyPosted(s.form, r); err != nil {
		s.form.Close()
		s.renderError(w, r, http.StatusBadRequest, "Could not read the form.")
		return nil, "", false
	}
	return s.form, id, true
}

func (s *Server) editFormSubmit(w http.ResponseWriter, r *http.Request) {
	c, id, ok := s.openEdit(w, r)
	if !ok {
		return
	}
	defer c.Close()
	ctx := r.Context()

	_, err := c.Submit(ctx)
	if err == nil {
		s.addFlash(w, r, flashSuccess, controllers.MsgUpdated)
		http.Redirect(w, r, "/forms/"+id, http.StatusSeeOther)
		return
	}

	form := c.View().Form
	var fe validation.FieldErrors
	switch {
	case errors.As(err, &fe):
		s.renderEditForm(w, r, http.StatusUnprocessableEntity, id, form, fieldMap(fe))
	case s.handleUnauthorized(w, r, err):
	default:
		s.log.Error(ctx, "failed to update form", "id", id, "error", err)
		s.renderEditForm(w, r, http.StatusBadGateway, id, form, map[string]string{errorKey: controllers.MsgSubmitFailed})
	}
}

func (s *Server) editFormAddArea(w http.ResponseWriter, r *http.Request) {
	c, id, ok := s.openEdit(w, r)
	if !ok {
		return
	}
	defer c.Close()

	if err := addArea(c, r); err != nil {
		s.renderEditForm(w, r, http.StatusUnprocessableEntity, id, c.View().Form,
			map[string]string{string(validation.FieldDeliveryAreas): controllers.MsgEmptyArea})
		return
	}
	s.renderEditForm(w, r, http.StatusOK, id, c.View().Form, nil)
}

func (s *Server) editFormRemoveArea(w http.ResponseWriter, r *http.Request) {
	c, id, ok := s.openEdit(w, r)
	if !ok {
		return
	}
	defer c.Close()

	if err := c.RemoveDeliveryArea(r.PostFormValue("remove_area")); err != nil {
		s.log.Warn(r.Context(), "failed to remove area", "error", err)
	}
	s.renderEditForm(w, r, http.StatusOK, id, c.View().Form, nil)
}
