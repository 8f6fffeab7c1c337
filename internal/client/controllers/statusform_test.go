package controllers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/driverportal/internal/client/api"
	"github.com/dmitrijs2005/driverportal/internal/client/api/apitest"
	"github.com/dmitrijs2005/driverportal/internal/client/drafts"
	"github.com/dmitrijs2005/driverportal/internal/client/models"
	"github.com/dmitrijs2005/driverportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/driverportal/internal/client/services"
	"github.com/dmitrijs2005/driverportal/internal/client/validation"
	"github.com/dmitrijs2005/driverportal/internal/logging"
	"github.com/dmitrijs2005/driverportal/internal/timex"
)

const today = "2025-01-10"

type recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification{}, r.notes...)
}

type formFixture struct {
	fc        *apitest.Client
	drafts    *drafts.Store
	repo      *metadata.MemoryRepository
	list      *FormListController
	notes     *recorder
	dismissed chan models.SubmittedFormRecord
	c         *StatusFormController
}

func newFormFixture(t *testing.T, fc *apitest.Client, autosave time.Duration) *formFixture {
	t.Helper()
	repo := metadata.NewMemoryRepository()
	shifts := services.NewShiftService(fc, logging.Nop())
	f := &formFixture{
		fc:        fc,
		repo:      repo,
		drafts:    drafts.NewStore(repo, logging.Nop()),
		list:      NewFormListController(shifts, logging.Nop()),
		notes:     &recorder{},
		dismissed: make(chan models.SubmittedFormRecord, 1),
	}
	f.c = NewStatusFormController(StatusFormOptions{
		Shifts:           shifts,
		Drafts:           f.drafts,
		List:             f.list,
		Notifier:         f.notes,
		Clock:            timex.Fixed(time.Date(2025, 1, 10, 8, 15, 30, 0, time.UTC)),
		Log:              logging.Nop(),
		AutoSaveInterval: autosave,
		DismissDelay:     10 * time.Millisecond,
		OnDismiss:        func(rec models.SubmittedFormRecord) { f.dismissed <- rec },
	})
	t.Cleanup(f.c.Close)
	return f
}

func fillActive(t *testing.T, c *StatusFormController) {
	t.Helper()
	require.NoError(t, c.SetLoad("1500"))
	require.NoError(t, c.SetMileage("250"))
	require.NoError(t, c.AddDeliveryArea("Downtown"))
}

func TestStatusForm_OpenNewDefaults(t *testing.T) {
	f := newFormFixture(t, apitest.New(), time.Hour)
	require.Equal(t, StateClosed, f.c.State())

	require.NoError(t, f.c.OpenNew(bg, today))
	v := f.c.View()
	assert.Equal(t, StateEditing, v.State)
	assert.Equal(t, ModeCreate, v.Mode)
	assert.Equal(t, models.NewStatusForm(today, "08:15:30"), v.Form)

	require.ErrorIs(t, f.c.OpenNew(bg, today), ErrBusy)
}

func TestStatusForm_OpenNewRestoresDraft(t *testing.T) {
	f := newFormFixture(t, apitest.New(), time.Hour)
	draft := models.NewStatusForm(today, "07:00:00")
	draft.Load = "42"
	draft.DeliveryAreas = []string{"Harbour"}
	require.NoError(t, f.drafts.Save(bg, draft))

	require.NoError(t, f.c.OpenNew(bg, today))
	assert.Equal(t, draft, f.c.View().Form)
}

func TestStatusForm_StaleDraftIgnored(t *testing.T) {
	f := newFormFixture(t, apitest.New(), time.Hour)
	require.NoError(t, f.drafts.Save(bg, models.NewStatusForm("2025-01-09", "07:00:00")))

	require.NoError(t, f.c.OpenNew(bg, today))
	assert.Equal(t, today, f.c.View().Form.Date)
	assert.Empty(t, f.repo.Snapshot())
}

func TestStatusForm_AutoSaveWritesDraft(t *testing.T) {
	f := newFormFixture(t, apitest.New(), 5*time.Millisecond)
	require.NoError(t, f.c.OpenNew(bg, today))
	require.NoError(t, f.c.SetLoad("7"))

	require.Eventually(t, func() bool {
		d, err := f.drafts.Load(bg, today)
		return err == nil && d != nil && d.Load == "7"
	}, time.Second, 5*time.Millisecond)

	f.c.Close()
	assert.Equal(t, StateClosed, f.c.State())
	d, err := f.drafts.Load(bg, today)
	require.NoError(t, err)
	require.NotNil(t, d, "closing keeps the draft")
}

func TestStatusForm_ManualSaveDraft(t *testing.T) {
	f := newFormFixture(t, apitest.New(), time.Hour)
	require.NoError(t, f.c.SaveDraft(bg), "closed dialog saves nothing")
	assert.Empty(t, f.repo.Snapshot())

	require.NoError(t, f.c.OpenNew(bg, today))
	require.NoError(t, f.c.SetMileage("12"))
	require.NoError(t, f.c.SaveDraft(bg))

	d, err := f.drafts.Load(bg, today)
	require.NoError(t, err)
	assert.Equal(t, models.FlexString("12"), d.Mileage)
}

func TestStatusForm_MutatorsRequireEditing(t *testing.T) {
	f := newFormFixture(t, apitest.New(), time.Hour)
	require.ErrorIs(t, f.c.SetLoad("1"), ErrNotEditable)
	require.ErrorIs(t, f.c.SetStatus(false), ErrNotEditable)
	require.ErrorIs(t, f.c.AddDeliveryArea("x"), ErrNotEditable)
	_, err := f.c.Submit(bg)
	require.ErrorIs(t, err, ErrNotEditable)
}

func TestStatusForm_DeliveryAreas(t *testing.T) {
	f := newFormFixture(t, apitest.New(), time.Hour)
	require.NoError(t, f.c.OpenNew(bg, today))

	require.NoError(t, f.c.AddDeliveryArea("  North "))
	require.NoError(t, f.c.AddDeliveryArea("South"))
	require.NoError(t, f.c.AddDeliveryArea("North"))
	require.ErrorIs(t, f.c.AddDeliveryArea("   "), ErrEmptyArea)
	assert.Equal(t, []string{"North", "South", "North"}, f.c.View().Form.DeliveryAreas)

	require.NoError(t, f.c.RemoveDeliveryArea("North"))
	assert.Equal(t, []string{"South"}, f.c.View().Form.DeliveryAreas)

	require.NoError(t, f.c.RemoveDeliveryArea("South"))
	assert.NotNil(t, f.c.View().Form.DeliveryAreas)
	assert.Empty(t, f.c.View().Form.DeliveryAreas)
}

func TestStatusForm_StatusToggleInCreateMode(t *testing.T) {
	f := newFormFixture(t, apitest.New(), time.Hour)
	require.NoError(t, f.c.OpenNew(bg, today))
	fillActive(t, f.c)

	require.NoError(t, f.c.SetStatus(false))
	form := f.c.View().Form
	assert.False(t, form.Status)
	assert.Empty(t, form.Load)
	assert.Empty(t, form.Mileage)
	assert.Empty(t, form.DeliveryAreas)

	require.NoError(t, f.c.SetAbsenceType(models.AbsenceOther))
	require.NoError(t, f.c.SetOtherReason("court"))
	require.NoError(t, f.c.SetStatus(true))

	form = f.c.View().Form
	assert.True(t, form.Status)
	assert.Empty(t, form.Load, "new form has nothing to restore")
	assert.Equal(t, models.AbsenceMaintenance, form.AbsenceType)
	assert.Empty(t, form.OtherReason)
}

func TestStatusForm_LeavingOtherClearsReason(t *testing.T) {
	f := newFormFixture(t, apitest.New(), time.Hour)
	require.NoError(t, f.c.OpenNew(bg, today))
	require.NoError(t, f.c.SetStatus(false))
	require.NoError(t, f.c.SetAbsenceType(models.AbsenceOther))
	require.NoError(t, f.c.SetOtherReason("court"))
	require.NoError(t, f.c.SetAbsenceType(models.AbsenceOther))
	assert.Equal(t, "court", f.c.View().Form.OtherReason)

	require.NoError(t, f.c.SetAbsenceType(models.AbsenceSickness))
	assert.Empty(t, f.c.View().Form.OtherReason)
}

func TestStatusForm_SubmitValidationErrorsNoNetwork(t *testing.T) {
	f := newFormFixture(t, apitest.New(), time.Hour)
	require.NoError(t, f.c.OpenNew(bg, today))
	require.NoError(t, f.c.SetStatus(false))
	require.NoError(t, f.c.SetAbsenceType(models.AbsenceOther))

	_, err := f.c.Submit(bg)
	var fe validation.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, validation.MsgNoOtherReason, fe[validation.FieldOtherReason])
	assert.Equal(t, StateEditing, f.c.State())
	assert.Equal(t, validation.MsgNoOtherReason, f.c.View().Errors[validation.FieldOtherReason])
	assert.Zero(t, f.fc.CreateCount())
}

func TestStatusForm_SubmitSuccess(t *testing.T) {
	fc := seeded(3)
	f := newFormFixture(t, fc, time.Hour)
	require.NoError(t, f.list.Fetch(bg))

	require.NoError(t, f.c.OpenNew(bg, today))
	fillActive(t, f.c)
	require.NoError(t, f.c.SaveDraft(bg))

	rec, err := f.c.Submit(bg)
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	assert.Equal(t, StateSubmitted, f.c.State())

	s := f.list.Snapshot()
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, rec.ID, s.Results[0].ID)

	d, err := f.drafts.Load(bg, today)
	require.NoError(t, err)
	assert.Nil(t, d)

	assert.Equal(t, []Notification{{SeveritySuccess, MsgSubmitted}}, f.notes.all())

	select {
	case got := <-f.dismissed:
		assert.Equal(t, rec.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("dialog was not dismissed")
	}
	assert.Equal(t, StateClosed, f.c.State())
	assert.Equal(t, "1500", string(fc.CreateCalls[0].Load))
}

func TestStatusForm_SubmitUnauthorized(t *testing.T) {
	fc := apitest.New()
	fc.CreateErr = api.ErrUnauthorized
	f := newFormFixture(t, fc, time.Hour)
	require.NoError(t, f.c.OpenNew(bg, today))
	fillActive(t, f.c)

	_, err := f.c.Submit(bg)
	require.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, []Notification{{SeverityError, MsgNotLoggedIn}}, f.notes.all())
	assert.Equal(t, StateEditing, f.c.State())
}

func TestStatusForm_SubmitFailureKeepsData(t *testing.T) {
	fc := apitest.New()
	fc.CreateErr = api.ErrUnavailable
	f := newFormFixture(t, fc, time.Hour)
	require.NoError(t, f.c.OpenNew(bg, today))
	fillActive(t, f.c)

	_, err := f.c.Submit(bg)
	require.ErrorIs(t, err, api.ErrUnavailable)
	assert.Equal(t, []Notification{{SeverityError, MsgSubmitFailed}}, f.notes.all())
	assert.Equal(t, StateEditing, f.c.State())
	assert.Equal(t, models.FlexString("1500"), f.c.View().Form.Load)

	fc.Set(func(c *apitest.Client) { c.CreateErr = nil })
	_, err = f.c.Submit(bg)
	require.NoError(t, err, "retry succeeds")
}

func TestStatusForm_ConcurrentSubmitIsBusy(t *testing.T) {
	fc := apitest.New()
	release := make(chan struct{})
	fc.CreateHook = func(context.Context) { <-release }
	f := newFormFixture(t, fc, time.Hour)
	require.NoError(t, f.c.OpenNew(bg, today))
	fillActive(t, f.c)

	done := make(chan error)
	go func() {
		_, err := f.c.Submit(bg)
		done <- err
	}()
	require.Eventually(t, func() bool { return f.c.State() == StateSubmitting }, time.Second, time.Millisecond)

	_, err := f.c.Submit(bg)
	require.ErrorIs(t, err, ErrBusy)
	require.ErrorIs(t, f.c.SetLoad("1"), ErrNotEditable)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, fc.CreateCount())
}

func TestStatusForm_CloseDuringCreateKeepsRecord(t *testing.T) {
	fc := apitest.New()
	release := make(chan struct{})
	fc.CreateHook = func(context.Context) { <-release }
	f := newFormFixture(t, fc, time.Hour)
	require.NoError(t, f.list.Fetch(bg))
	require.NoError(t, f.c.OpenNew(bg, today))
	fillActive(t, f.c)
	require.NoError(t, f.c.SaveDraft(bg))

	done := make(chan error)
	go func() {
		_, err := f.c.Submit(bg)
		done <- err
	}()
	require.Eventually(t, func() bool { return f.c.State() == StateSubmitting }, time.Second, time.Millisecond)

	f.c.Close()
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, StateClosed, f.c.State())
	assert.Equal(t, 1, fc.CreateCount())
	assert.Equal(t, 1, f.list.Snapshot().Count)

	d, err := f.drafts.Load(bg, today)
	require.NoError(t, err)
	assert.Nil(t, d, "draft of a created form must not linger")
	assert.Empty(t, f.notes.all())
}

type nilRecordShifts struct {
	services.ShiftService
}

func (nilRecordShifts) Create(context.Context, models.StatusForm) (*models.SubmittedFormRecord, error) {
	return nil, nil
}

func TestStatusForm_NilRecordIsError(t *testing.T) {
	repo := metadata.NewMemoryRepository()
	notes := &recorder{}
	c := NewStatusFormController(StatusFormOptions{
		Shifts:           nilRecordShifts{},
		Drafts:           drafts.NewStore(repo, logging.Nop()),
		Notifier:         notes,
		Clock:            timex.Fixed(time.Date(2025, 1, 10, 8, 15, 30, 0, time.UTC)),
		Log:              logging.Nop(),
		AutoSaveInterval: time.Hour,
		DismissDelay:     10 * time.Millisecond,
	})
	t.Cleanup(c.Close)
	require.NoError(t, c.OpenNew(bg, today))
	fillActive(t, c)

	rec, err := c.Submit(bg)
	require.ErrorIs(t, err, ErrEmptyRecord)
	assert.Nil(t, rec)
	assert.Equal(t, StateEditing, c.State())
	assert.Equal(t, []Notification{{SeverityError, MsgSubmitFailed}}, notes.all())
}

func TestStatusForm_EditRestoresOriginalOnToggle(t *testing.T) {
	fc := seeded(1)
	f := newFormFixture(t, fc, time.Hour)
	require.NoError(t, f.list.Fetch(bg))

	require.NoError(t, f.c.OpenEdit(bg, "1"))
	v := f.c.View()
	assert.Equal(t, ModeEdit, v.Mode)
	assert.Equal(t, "1", v.ID)

	require.NoError(t, f.c.SetStatus(false))
	require.NoError(t, f.c.SetStatus(true))
	form := f.c.View().Form
	assert.Equal(t, models.FlexString("10"), form.Load)
	assert.Equal(t, models.FlexString("100"), form.Mileage)
	assert.Equal(t, []string{"North"}, form.DeliveryAreas)

	require.NoError(t, f.c.SetLoad("55"))
	rec, err := f.c.Submit(bg)
	require.NoError(t, err)
	assert.Equal(t, models.FlexString("55"), rec.Load)
	require.Len(t, fc.UpdateCalls, 1)
	assert.Equal(t, models.FlexString("55"), f.list.Snapshot().Results[0].Load)
	assert.Equal(t, 1, f.list.Snapshot().Count, "updates do not change the count")
	assert.Equal(t, []Notification{{SeveritySuccess, MsgUpdated}}, f.notes.all())
	assert.Empty(t, f.repo.Snapshot(), "edits never touch the draft")
}

func TestStatusForm_RepeatedStatusKeepsEdits(t *testing.T) {
	f := newFormFixture(t, seeded(1), time.Hour)
	require.NoError(t, f.c.OpenEdit(bg, "1"))

	require.NoError(t, f.c.SetLoad("77"))
	require.NoError(t, f.c.SetDeliveryAreas([]string{" East ", "", "West"}))
	require.NoError(t, f.c.SetStatus(true))

	form := f.c.View().Form
	assert.Equal(t, models.FlexString("77"), form.Load)
	assert.Equal(t, []string{"East", "West"}, form.DeliveryAreas)
}

func TestStatusForm_OpenEditMissingRecord(t *testing.T) {
	f := newFormFixture(t, apitest.New(), time.Hour)
	err := f.c.OpenEdit(bg, "404")
	require.ErrorIs(t, err, api.ErrNotFound)
	assert.Equal(t, StateClosed, f.c.State())
}

func TestStatusForm_CloseStopsAutoSave(t *testing.T) {
	f := newFormFixture(t, apitest.New(), time.Millisecond)
	require.NoError(t, f.c.OpenNew(bg, today))
	f.c.Close()
	f.c.Close()

	require.NoError(t, f.repo.Clear(bg))
	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, f.repo.Snapshot())
}
