package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/driverportal/internal/client/api"
	"github.com/dmitrijs2005/driverportal/internal/client/models"
)

// refresh reloads the current page quietly; used after login so the prompt
// can show the overdue marker.
func (a *App) refresh(ctx context.Context) {
	if err := a.list.Fetch(ctx); err != nil {
		a.handleUnauthorized(err)
	}
}

func (a *App) List(ctx context.Context) error {
	return a.afterFetch(a.list.Fetch(ctx))
}

func (a *App) Page(ctx context.Context, n int) error {
	return a.afterFetch(a.list.SetPage(ctx, n))
}

func (a *App) Next(ctx context.Context) error {
	return a.afterFetch(a.list.Next(ctx))
}

func (a *App) Prev(ctx context.Context) error {
	return a.afterFetch(a.list.Prev(ctx))
}

func (a *App) afterFetch(err error) error {
	if err != nil {
		if !a.handleUnauthorized(err) {
			a.printf("Could not load forms: %v\n", err)
		}
		return err
	}
	a.printList()
	return nil
}

func (a *App) printList() {
	snap := a.list.Snapshot()
	if snap.Empty() {
		a.printf("No forms submitted yet.\n")
		return
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tSTATUS\tLOAD\tMILEAGE\tDETAILS")
	for _, r := range snap.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Date, r.Time, r.StatusLabel(), r.Load, r.Mileage, details(r.StatusForm))
	}
	_ = tw.Flush()
	a.printf("Page %d of %d (%d forms)\n", snap.Page, max(snap.TotalPages, 1), snap.Count)
}

func details(f models.StatusForm) string {
	if f.Status {
		return strings.Join(f.DeliveryAreas, ", ")
	}
	if f.AbsenceType == models.AbsenceOther && f.OtherReason != "" {
		return "Other: " + f.OtherReason
	}
	return strings.ToLower(string(f.AbsenceType))
}

// Show prints a single submitted form.
func (a *App) Show(ctx context.Context, id string) error {
	rec, err := a.shifts.Get(ctx, id)
	if err != nil {
		switch {
		case a.handleUnauthorized(err):
		case errors.Is(err, api.ErrNotFound):
			a.printf("Form %s not found.\n", id)
		default:
			a.printf("Could not load form %s: %v\n", id, err)
		}
		return err
	}
	a.printForm(rec.ID.String(), rec.StatusForm)
	return nil
}

func (a *App) printForm(id string, f models.StatusForm) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	if id != "" {
		fmt.Fprintf(tw, "ID:\t%s\n", id)
	}
	fmt.Fprintf(tw, "Date:\t%s\n", f.Date)
	fmt.Fprintf(tw, "Time:\t%s\n", f.Time)
	fmt.Fprintf(tw, "Status:\t%s\n", f.StatusLabel())
	if f.Status {
		fmt.Fprintf(tw, "Load:\t%s\n", f.Load)
		fmt.Fprintf(tw, "Mileage:\t%s\n", f.Mileage)
		fmt.Fprintf(tw, "Delivery areas:\t%s\n", strings.Join(f.DeliveryAreas, ", "))
	} else {
		fmt.Fprintf(tw, "Absence:\t%s\n", f.AbsenceType)
		if f.AbsenceType == models.AbsenceOther {
			fmt.Fprintf(tw, "Reason:\t%s\n", f.OtherReason)
		}
	}
	_ = tw.Flush()
}
