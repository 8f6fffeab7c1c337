package controllers

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/driverportal/internal/client/api"
	"github.com/dmitrijs2005/driverportal/internal/client/models"
	"github.com/dmitrijs2005/driverportal/internal/client/services"
	"github.com/dmitrijs2005/driverportal/internal/client/validation"
	"github.com/dmitrijs2005/driverportal/internal/logging"
	"github.com/dmitrijs2005/driverportal/internal/timex"
)

const (
	MsgSubmitted    = "Daily status submitted successfully"
	MsgUpdated      = "Daily status updated successfully"
	MsgNotLoggedIn  = "You are not logged in. Please log in again."
	MsgSubmitFailed = "Could not submit the form. Please try again."
	MsgEmptyArea    = "Delivery area must not be empty"
)

const (
	DefaultAutoSave     = 30 * time.Second
	DefaultDismissDelay = time.Second
)

// FormState is the lifecycle of the status form dialog.
type FormState int

const (
	StateClosed FormState = iota
	StateHydrating
	StateEditing
	StateSubmitting
	StateSubmitted
)

func (s FormState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHydrating:
		return "hydrating"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("FormState(%d)", int(s))
	}
}

type FormMode int

const (
	ModeCreate FormMode = iota
	ModeEdit
)

// ErrEmptyArea is returned when a blank delivery area is added.
var ErrEmptyArea = errors.New(MsgEmptyArea)

// StatusFormOptions configures a StatusFormController. Shifts and Drafts
// are required; the rest is optional.
type StatusFormOptions struct {
	Shifts   services.ShiftService
	Drafts   DraftStore
	List     ListSink
	Notifier Notifier
	Clock    timex.Clock
	Log      logging.Logger

	AutoSaveInterval time.Duration
	DismissDelay     time.Duration

	// OnDismiss runs once the dialog closes itself after a successful submit.
	OnDismiss func(rec models.SubmittedFormRecord)
}

// StatusFormView is a consistent copy of the dialog state for rendering.
type StatusFormView struct {
	State  FormState
	Mode   FormMode
	ID     string
	Form   models.StatusForm
	Errors validation.FieldErrors
}

// StatusFormController drives the daily status form dialog.
//
// States move Closed -> Hydrating -> Editing -> Submitting and from there to
// Submitted (then Closed after DismissDelay) or back to Editing on failure.
// While a new form is open its fields are auto-saved to the draft store
// every AutoSaveInterval.
type StatusFormController struct {
	opts StatusFormOptions
	log  logging.Logger

	mu       sync.Mutex
	state    FormState
	mode     FormMode
	editID   string
	form     models.StatusForm
	original *models.StatusForm
	errs     validation.FieldErrors
	// session increments on every open so late callbacks from a previous
	// dialog can tell they are stale.
	session uint64
	stop    chan struct{}
	dismiss *time.Timer
	wg      sync.WaitGroup
}

func NewStatusFormController(opts StatusFormOptions) *StatusFormController {
	if opts.Clock == nil {
		opts.Clock = timex.SystemClock{}
	}
	if opts.Log == nil {
		opts.Log = logging.Nop()
	}
	if opts.AutoSaveInterval <= 0 {
		opts.AutoSaveInterval = DefaultAutoSave
	}
	if opts.DismissDelay <= 0 {
		opts.DismissDelay = DefaultDismissDelay
	}
	return &StatusFormController{opts: opts, log: opts.Log.With("module", "statusform")}
}

// OpenNew opens today's form for day, restoring a same-day draft when one
// exists. Auto-save starts once the form is editable.
func (c *StatusFormController) OpenNew(ctx context.Context, day string) error {
	c.mu.Lock()
	if c.state != StateClosed {
		c.mu.Unlock()
		return ErrBusy
	}
	c.beginLocked(ModeCreate, "")
	sess := c.session
	c.mu.Unlock()

	draft, err := c.opts.Drafts.Load(ctx, day)
	if err != nil {
		c.log.Warn(ctx, "failed to load draft, starting empty", "error", err)
		draft = nil
	}

	form := models.NewStatusForm(day, timex.WallTime(c.opts.Clock.Now()))
	if draft != nil {
		c.log.Info(ctx, "restored draft", "date", draft.Date)
		form = draft.Clone()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != sess || c.state != StateHydrating {
		return ErrNotEditable
	}
	c.form = form
	c.state = StateEditing
	c.startAutoSaveLocked()
	return nil
}

// OpenEdit fetches record id and opens it for editing. Edits are not
// auto-saved; the single draft slot belongs to today's new form.
func (c *StatusFormController) OpenEdit(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.state != StateClosed {
		c.mu.Unlock()
		return ErrBusy
	}
	c.beginLocked(ModeEdit, id)
	sess := c.session
	c.mu.Unlock()

	rec, err := c.opts.Shifts.Get(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != sess || c.state != StateHydrating {
		return ErrNotEditable
	}
	if err != nil {
		c.state = StateClosed
		return err
	}

	form := rec.Clone()
	if form.DeliveryAreas == nil {
		form.DeliveryAreas = []string{}
	}
	original := form.Clone()
	c.form = form
	c.original = &original
	c.state = StateEditing
	return nil
}

func (c *StatusFormController) beginLocked(mode FormMode, id string) {
	c.session++
	c.state = StateHydrating
	c.mode = mode
	c.editID = id
	c.original = nil
	c.errs = nil
	c.form = models.StatusForm{}
}

func (c *StatusFormController) startAutoSaveLocked() {
	stop := make(chan struct{})
	c.stop = stop
	c.wg.Add(1)
	go c.autoSave(stop, c.opts.AutoSaveInterval)
}

func (c *StatusFormController) stopAutoSaveLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func (c *StatusFormController) autoSave(stop <-chan struct{}, every time.Duration) {
	defer c.wg.Done()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if err := c.SaveDraft(context.Background()); err != nil {
				c.log.Warn(context.Background(), "auto-save failed", "error", err)
			}
		}
	}
}

// SaveDraft writes the current fields to the draft store. It is a no-op
// unless a new form is being edited.
func (c *StatusFormController) SaveDraft(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditing || c.mode != ModeCreate {
		return nil
	}
	// held under the lock so a save cannot land after Submit cleared the draft
	return c.opts.Drafts.Save(ctx, c.form.Clone())
}

// Close dismisses the dialog without submitting and waits for the
// auto-save goroutine to exit. The draft is kept.
func (c *StatusFormController) Close() {
	c.mu.Lock()
	c.state = StateClosed
	c.session++
	c.stopAutoSaveLocked()
	if c.dismiss != nil {
		c.dismiss.Stop()
		c.dismiss = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *StatusFormController) mutate(fn func(f *models.StatusForm) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditing {
		return ErrNotEditable
	}
	return fn(&c.form)
}

func (c *StatusFormController) SetLoad(v string) error {
	return c.mutate(func(f *models.StatusForm) error {
		f.Load = models.FlexString(v)
		return nil
	})
}

func (c *StatusFormController) SetMileage(v string) error {
	return c.mutate(func(f *models.StatusForm) error {
		f.Mileage = models.FlexString(v)
		return nil
	})
}

// AddDeliveryArea appends the trimmed area. Duplicates are kept.
func (c *StatusFormController) AddDeliveryArea(area string) error {
	area = strings.TrimSpace(area)
	return c.mutate(func(f *models.StatusForm) error {
		if area == "" {
			return ErrEmptyArea
		}
		f.DeliveryAreas = append(f.DeliveryAreas, area)
		return nil
	})
}

// RemoveDeliveryArea removes every entry equal to area.
func (c *StatusFormController) RemoveDeliveryArea(area string) error {
	return c.mutate(func(f *models.StatusForm) error {
		f.DeliveryAreas = slices.DeleteFunc(f.DeliveryAreas, func(a string) bool { return a == area })
		if f.DeliveryAreas == nil {
			f.DeliveryAreas = []string{}
		}
		return nil
	})
}

// SetDeliveryAreas replaces the area list with the trimmed, non-blank
// entries of areas.
func (c *StatusFormController) SetDeliveryAreas(areas []string) error {
	return c.mutate(func(f *models.StatusForm) error {
		f.DeliveryAreas = make([]string, 0, len(areas))
		for _, a := range areas {
			if a = strings.TrimSpace(a); a != "" {
				f.DeliveryAreas = append(f.DeliveryAreas, a)
			}
		}
		return nil
	})
}

// SetStatus toggles between active and absent. Going absent clears the
// activity fields; going active restores them from the record being edited
// (empty for a new form) and resets the absence reason. Setting the current
// status again changes nothing.
func (c *StatusFormController) SetStatus(active bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditing {
		return ErrNotEditable
	}

	f := &c.form
	if f.Status == active {
		return nil
	}
	f.Status = active
	if !active {
		f.Load = ""
		f.Mileage = ""
		f.DeliveryAreas = []string{}
		return nil
	}

	if c.mode == ModeEdit && c.original != nil {
		f.Load = c.original.Load
		f.Mileage = c.original.Mileage
		f.DeliveryAreas = append([]string{}, c.original.DeliveryAreas...)
	}
	f.AbsenceType = models.DefaultAbsenceType
	f.OtherReason = ""
	return nil
}

// SetAbsenceType changes the reason. Leaving OTHER clears the free-text reason.
func (c *StatusFormController) SetAbsenceType(a models.AbsenceType) error {
	return c.mutate(func(f *models.StatusForm) error {
		if a != models.AbsenceOther {
			f.OtherReason = ""
		}
		f.AbsenceType = a
		return nil
	})
}

func (c *StatusFormController) SetOtherReason(v string) error {
	return c.mutate(func(f *models.StatusForm) error {
		f.OtherReason = v
		return nil
	})
}

// Submit validates and sends the form. Field errors are returned as
// validation.FieldErrors without contacting the backend. A 401 is returned
// as api.ErrUnauthorized; other backend failures leave the dialog editable
// with the fields intact.
func (c *StatusFormController) Submit(ctx context.Context) (*models.SubmittedFormRecord, error) {
	c.mu.Lock()
	switch c.state {
	case StateSubmitting:
		c.mu.Unlock()
		return nil, ErrBusy
	case StateEditing:
	default:
		c.mu.Unlock()
		return nil, ErrNotEditable
	}

	if errs := validation.ValidateStatusForm(c.form); !errs.Empty() {
		c.errs = errs
		c.mu.Unlock()
		return nil, errs
	}
	c.errs = nil
	c.state = StateSubmitting
	form := c.form.Clone()
	mode, id, sess := c.mode, c.editID, c.session
	c.mu.Unlock()

	var rec *models.SubmittedFormRecord
	var err error
	if mode == ModeEdit {
		rec, err = c.opts.Shifts.Update(ctx, id, form)
	} else {
		rec, err = c.opts.Shifts.Create(ctx, form)
	}

	if err == nil && rec == nil {
		err = ErrEmptyRecord
	}

	c.mu.Lock()
	current := c.session == sess && c.state == StateSubmitting

	if err != nil {
		if !current {
			c.mu.Unlock()
			return nil, err
		}
		c.state = StateEditing
		c.mu.Unlock()
		if errors.Is(err, api.ErrUnauthorized) {
			c.notify(SeverityError, MsgNotLoggedIn)
			return nil, err
		}
		c.notify(SeverityError, MsgSubmitFailed)
		return nil, err
	}

	// the record exists on the backend whether or not the dialog is still open
	if mode == ModeCreate {
		if cerr := c.opts.Drafts.Clear(ctx); cerr != nil {
			c.log.Warn(ctx, "failed to clear draft after submit", "error", cerr)
		}
	}
	out := *rec
	out.StatusForm = rec.Clone()
	if current {
		c.state = StateSubmitted
		c.stopAutoSaveLocked()
		c.dismiss = time.AfterFunc(c.opts.DismissDelay, func() { c.dismissAfterSubmit(sess, out) })
	}
	c.mu.Unlock()

	if c.opts.List != nil {
		if mode == ModeCreate {
			c.opts.List.Prepend(out)
		} else {
			c.opts.List.Replace(out)
		}
	}

	if !current {
		return &out, nil
	}
	if mode == ModeCreate {
		c.notify(SeveritySuccess, MsgSubmitted)
	} else {
		c.notify(SeveritySuccess, MsgUpdated)
	}
	return &out, nil
}

func (c *StatusFormController) dismissAfterSubmit(sess uint64, rec models.SubmittedFormRecord) {
	c.mu.Lock()
	if c.session != sess || c.state != StateSubmitted {
		c.mu.Unlock()
		return
	}
	c.state = StateClosed
	c.dismiss = nil
	c.mu.Unlock()

	if c.opts.OnDismiss != nil {
		c.opts.OnDismiss(rec)
	}
}

func (c *StatusFormController) notify(sev Severity, msg string) {
	if c.opts.Notifier != nil {
		c.opts.Notifier.Notify(Notification{Severity: sev, Message: msg})
	}
}

func (c *StatusFormController) State() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *StatusFormController) View() StatusFormView {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := StatusFormView{
		State: c.state,
		Mode:  c.mode,
		ID:    c.editID,
		Form:  c.form.Clone(),
	}
	if len(c.errs) > 0 {
		v.Errors = make(validation.FieldErrors, len(c.errs))
		for k, m := range c.errs {
			v.Errors[k] = m
		}
	}
	return v
}
