// Package apitest provides an in-memory api.Client for tests.
package apitest

import (
	"context"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/driverportal/internal/client/api"
	"github.com/dmitrijs2005/driverportal/internal/client/models"
)

var _ api.Client = (*Client)(nil)

// Client is a programmable fake backend. Records live in memory, newest
// first; the *Err fields, when set, are returned instead of doing the work.
// Hook functions run before the call returns and may block to simulate
// latency.
type Client struct {
	mu sync.Mutex

	Records  []models.SubmittedFormRecord
	NextID   int
	DriverID string

	LoginErr  error
	ListErr   error
	GetErr    error
	CreateErr error
	UpdateErr error

	ListHook   func(ctx context.Context, page int)
	CreateHook func(ctx context.Context)

	LoginCalls  []models.Credentials
	ListCalls   []int
	CreateCalls []models.StatusForm
	UpdateCalls []models.SubmittedFormRecord
}

func New() *Client {
	return &Client{NextID: 100, DriverID: "1"}
}

func (c *Client) Login(_ context.Context, creds models.Credentials) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.LoginCalls = append(c.LoginCalls, creds)
	return c.LoginErr
}

func (c *Client) ListShifts(ctx context.Context, page int) (*models.FormListResponse, error) {
	c.mu.Lock()
	c.ListCalls = append(c.ListCalls, page)
	hook := c.ListHook
	c.mu.Unlock()

	if hook != nil {
		hook(ctx, page)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ListErr != nil {
		return nil, c.ListErr
	}
	start := (page - 1) * models.PageSize
	end := min(start+models.PageSize, len(c.Records))
	results := []models.SubmittedFormRecord{}
	if start >= 0 && start < len(c.Records) {
		results = append(results, c.Records[start:end]...)
	}
	return &models.FormListResponse{Count: models.Count(len(c.Records)), Results: results}, nil
}

func (c *Client) GetShift(_ context.Context, id string) (*models.SubmittedFormRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.GetErr != nil {
		return nil, c.GetErr
	}
	for _, r := range c.Records {
		if string(r.ID) == id {
			r.StatusForm = r.Clone()
			return &r, nil
		}
	}
	return nil, api.ErrNotFound
}

func (c *Client) CreateShift(ctx context.Context, form models.StatusForm) (*models.SubmittedFormRecord, error) {
	c.mu.Lock()
	c.CreateCalls = append(c.CreateCalls, form.Clone())
	hook := c.CreateHook
	c.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.CreateErr != nil {
		return nil, c.CreateErr
	}
	c.NextID++
	rec := models.SubmittedFormRecord{
		ID:         models.FlexString(strconv.Itoa(c.NextID)),
		Driver:     models.FlexString(c.DriverID),
		StatusForm: form.Clone(),
	}
	c.Records = append([]models.SubmittedFormRecord{rec}, c.Records...)
	return &rec, nil
}

func (c *Client) UpdateShift(_ context.Context, id string, form models.StatusForm) (*models.SubmittedFormRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec := models.SubmittedFormRecord{ID: models.FlexString(id), Driver: models.FlexString(c.DriverID), StatusForm: form.Clone()}
	c.UpdateCalls = append(c.UpdateCalls, rec)
	if c.UpdateErr != nil {
		return nil, c.UpdateErr
	}
	for i, r := range c.Records {
		if string(r.ID) == id {
			c.Records[i] = rec
			return &rec, nil
		}
	}
	return nil, api.ErrNotFound
}

// Seed appends records, keeping their order.
func (c *Client) Seed(recs ...models.SubmittedFormRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Records = append(c.Records, recs...)
}

// Set runs fn under the fake's lock so tests can change behaviour safely
// while calls are in flight.
func (c *Client) Set(fn func(c *Client)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c)
}

func (c *Client) CreateCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.CreateCalls)
}

func (c *Client) LoginCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.LoginCalls)
}
