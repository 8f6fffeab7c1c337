package controllers

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/driverportal/internal/client/api"
	"github.com/dmitrijs2005/driverportal/internal/client/models"
	"github.com/dmitrijs2005/driverportal/internal/client/services"
	"github.com/dmitrijs2005/driverportal/internal/logging"
)

// FormListSnapshot is a consistent copy of the list state for rendering.
type FormListSnapshot struct {
	Page       int
	Count      int
	TotalPages int
	Results    []models.SubmittedFormRecord
	Loading    bool
	NeedsLogin bool
	Loaded     bool
}

// Empty reports a loaded list without any record.
func (s FormListSnapshot) Empty() bool {
	return s.Loaded && len(s.Results) == 0
}

// FormListController keeps one page of the driver's submitted forms.
//
// Every fetch takes a new generation number and its response is applied
// only if no later fetch was started meanwhile, so the last request wins
// regardless of the order responses arrive in.
type FormListController struct {
	shifts services.ShiftService
	log    logging.Logger

	mu         sync.Mutex
	page       int
	count      int
	results    []models.SubmittedFormRecord
	generation uint64
	pending    int
	needsLogin bool
	loaded     bool
}

func NewFormListController(shifts services.ShiftService, log logging.Logger) *FormListController {
	return &FormListController{
		shifts:  shifts,
		log:     log.With("module", "formlist"),
		page:    1,
		results: []models.SubmittedFormRecord{},
	}
}

// Fetch loads the current page. It returns api.ErrUnauthorized (wrapped)
// when the driver has to log in again; other failures are logged, returned
// and leave the previous page in place.
func (c *FormListController) Fetch(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	page := c.page
	c.pending++
	c.mu.Unlock()

	resp, err := c.shifts.List(ctx, page)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending--

	if gen != c.generation {
		c.log.Debug(ctx, "dropping superseded list response", "page", page)
		return nil
	}

	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			c.needsLogin = true
			return err
		}
		c.log.Error(ctx, "failed to fetch forms", "page", page, "error", err)
		return err
	}

	c.needsLogin = false
	c.loaded = true
	c.count = int(resp.Count)
	c.results = append([]models.SubmittedFormRecord{}, resp.Results...)
	return nil
}

// SetPage moves to page p (at least 1) and fetches it.
func (c *FormListController) SetPage(ctx context.Context, p int) error {
	c.mu.Lock()
	c.page = max(p, 1)
	c.mu.Unlock()
	return c.Fetch(ctx)
}

// Next and Prev move one page when such a page exists.
func (c *FormListController) Next(ctx context.Context) error {
	c.mu.Lock()
	p := c.page
	last := models.TotalPages(c.count)
	c.mu.Unlock()
	if p >= last {
		return nil
	}
	return c.SetPage(ctx, p+1)
}

func (c *FormListController) Prev(ctx context.Context) error {
	c.mu.Lock()
	p := c.page
	c.mu.Unlock()
	if p <= 1 {
		return nil
	}
	return c.SetPage(ctx, p-1)
}

// Prepend puts a freshly created record at the top of the current page.
func (c *FormListController) Prepend(rec models.SubmittedFormRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	results := make([]models.SubmittedFormRecord, 0, len(c.results)+1)
	results = append(results, rec)
	results = append(results, c.results...)
	if len(results) > models.PageSize {
		results = results[:models.PageSize]
	}
	c.results = results
	c.count++
	c.loaded = true
}

// Replace swaps a record with the same id for rec, if it is on this page.
func (c *FormListController) Replace(rec models.SubmittedFormRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.results {
		if c.results[i].ID == rec.ID {
			c.results[i] = rec
			return
		}
	}
}

func (c *FormListController) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *FormListController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending > 0
}

func (c *FormListController) NeedsLogin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.needsLogin
}

func (c *FormListController) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.TotalPages(c.count)
}

func (c *FormListController) Empty() bool {
	return c.Snapshot().Empty()
}

func (c *FormListController) Snapshot() FormListSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return FormListSnapshot{
		Page:       c.page,
		Count:      c.count,
		TotalPages: models.TotalPages(c.count),
		Results:    append([]models.SubmittedFormRecord{}, c.results...),
		Loading:    c.pending > 0,
		NeedsLogin: c.needsLogin,
		Loaded:     c.loaded,
	}
}
