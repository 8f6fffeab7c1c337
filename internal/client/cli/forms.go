package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/driverportal/internal/client/api"
	"github.com/dmitrijs2005/driverportal/internal/client/controllers"
	"github.com/dmitrijs2005/driverportal/internal/client/models"
	"github.com/dmitrijs2005/driverportal/internal/client/validation"
	"github.com/dmitrijs2005/driverportal/internal/timex"
)

const formHelp = `Form commands:
  load N                      vehicle load
  mileage N                   mileage
  area add NAME | area rm NAME
  status active|absent
  reason maintenance|sickness|other
  other TEXT                  reason when absence is "other"
  show | save | submit | cancel`

// New opens today's status form and runs the form prompt until the form is
// submitted or cancelled. An unfinished form is kept as a draft.
func (a *App) New(ctx context.Context) error {
	day := timex.Day(a.clock.Now())
	if err := a.form.OpenNew(ctx, day); err != nil {
		a.printf("Could not open the form: %v\n", err)
		return err
	}
	defer a.form.Close()

	a.printf("Daily status for %s. Type 'help' for form commands.\n", day)
	a.printForm("", a.form.View().Form)
	return a.runForm(ctx)
}

// Edit opens a submitted form for changes.
func (a *App) Edit(ctx context.Context, id string) error {
	if err := a.form.OpenEdit(ctx, id); err != nil {
		switch {
		case a.handleUnauthorized(err):
		case errors.Is(err, api.ErrNotFound):
			a.printf("Form %s not found.\n", id)
		default:
			a.printf("Could not open form %s: %v\n", id, err)
		}
		return err
	}
	defer a.form.Close()

	a.printf("Editing form %s. Type 'help' for form commands.\n", id)
	a.printForm(id, a.form.View().Form)
	return a.runForm(ctx)
}

// runForm is the nested prompt of the status form dialog.
func (a *App) runForm(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.printf("form> ")
		line, err := readLine(a.reader)
		if err != nil {
			a.saveDraftOnExit(ctx)
			return nil
		}
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch cmd {
		case "":
			continue
		case "help":
			a.printf("%s\n", formHelp)
		case "load":
			a.report(a.form.SetLoad(rest))
		case "mileage":
			a.report(a.form.SetMileage(rest))
		case "area":
			op, name, _ := strings.Cut(rest, " ")
			switch op {
			case "add":
				a.report(a.form.AddDeliveryArea(name))
			case "rm":
				a.report(a.form.RemoveDeliveryArea(strings.TrimSpace(name)))
			default:
				a.printf("Usage: area add NAME | area rm NAME\n")
			}
		case "status":
			switch rest {
			case "active":
				a.report(a.form.SetStatus(true))
			case "absent":
				a.report(a.form.SetStatus(false))
			default:
				a.printf("Usage: status active|absent\n")
			}
		case "reason":
			at, err := models.ParseAbsenceType(rest)
			if err != nil {
				a.printf("Usage: reason maintenance|sickness|other\n")
				continue
			}
			a.report(a.form.SetAbsenceType(at))
		case "other":
			a.report(a.form.SetOtherReason(rest))
		case "show":
			v := a.form.View()
			a.printForm(v.ID, v.Form)
		case "save":
			if err := a.form.SaveDraft(ctx); err != nil {
				a.printf("Could not save draft: %v\n", err)
			} else {
				a.printf("Draft saved.\n")
			}
		case "submit":
			if done := a.submit(ctx); done {
				return nil
			}
		case "cancel":
			a.saveDraftOnExit(ctx)
			return nil
		default:
			a.printf("Unknown form command: %s\n", cmd)
		}
	}
}

// submit reports whether the dialog is finished.
func (a *App) submit(ctx context.Context) bool {
	_, err := a.form.Submit(ctx)
	if err == nil {
		return true
	}

	var fe validation.FieldErrors
	switch {
	case errors.As(err, &fe):
		for _, msg := range fe.Messages() {
			a.printf("  %s\n", msg)
		}
	case errors.Is(err, api.ErrUnauthorized):
		a.setSession(models.Anonymous())
		a.saveDraftOnExit(ctx)
		return true
	}
	// other failures were already announced by the controller
	return false
}

func (a *App) saveDraftOnExit(ctx context.Context) {
	if v := a.form.View(); v.State != controllers.StateEditing || v.Mode != controllers.ModeCreate {
		return
	}
	if err := a.form.SaveDraft(ctx); err != nil {
		a.log.Warn(ctx, "failed to save draft", "error", err)
		return
	}
	a.printf("Draft kept for later.\n")
}

func (a *App) report(err error) {
	if err != nil {
		a.printf("%v\n", err)
	}
}
