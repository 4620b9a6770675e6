// Package list owns the canonical grocery item collection and its
// reconciliation with the service.
package list

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/idilsaglam/grocer/internal/api"
	"github.com/idilsaglam/grocer/internal/model"
)

// API is the slice of the gateway the controller needs.
type API interface {
	Items(ctx context.Context) ([]model.GroceryItem, error)
	AddItem(ctx context.Context, item model.GroceryItem) (model.GroceryItem, error)
	UpdateItem(ctx context.Context, id string, patch api.ItemPatch) error
	DeleteItem(ctx context.Context, id string) error
	DeleteCategoryItems(ctx context.Context, category string) error
}

// Notifier is satisfied by *notify.Queue.
type Notifier interface {
	Success(message string) string
	Error(message string) string
}

// Controller is the single writer of the canonical set. External callers
// never mutate the collection directly; reads return copies.
type Controller struct {
	api    API
	notify Notifier
	log    *slog.Logger

	mu    sync.Mutex
	items []model.GroceryItem
	seq   map[string]uint64 // per-item toggle sequence; stale confirmations are dropped
}

func NewController(gw API, notifier Notifier) *Controller {
	return &Controller{
		api:    gw,
		notify: notifier,
		log:    slog.Default(),
		seq:    make(map[string]uint64),
	}
}

// Refresh replaces the canonical set wholesale from the service. It is the
// single resynchronization path, for loads and error recovery alike.
func (c *Controller) Refresh(ctx context.Context) error {
	items, err := c.api.Items(ctx)
	if err != nil {
		c.log.Warn("refresh failed", "error", err)
		return err
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}

// Add creates an item remotely and appends the server-returned record. The
// item only becomes visible after confirmation: its id is server-assigned,
// so showing it earlier would need an identity fix-up afterwards.
func (c *Controller) Add(ctx context.Context, name, category string) error {
	name = strings.TrimSpace(name)
	if name == "" || category == "" {
		verr := &api.ValidationError{Message: "please enter an item name and select a category"}
		c.notify.Error(verr.Message)
		return verr
	}
	saved, err := c.api.AddItem(ctx, model.GroceryItem{Name: name, Category: category})
	if err != nil {
		c.notify.Error("failed to add item, please try again")
		return err
	}
	c.mu.Lock()
	c.items = append(c.items, saved)
	c.mu.Unlock()
	c.notify.Success(fmt.Sprintf("%q added to your list", saved.Name))
	return nil
}

// Toggle flips completion optimistically, then commits the new value with a
// partial update. A failed commit never inverts the flip locally, because
// another mutation may have landed in between; the only safe rollback is a
// full Refresh. A completion that arrives after a newer toggle was issued
// for the same item is dropped by sequence number.
func (c *Controller) Toggle(ctx context.Context, id string) error {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		c.log.Debug("toggle on unknown item", "id", id)
		return nil
	}
	c.items[idx].Completed = !c.items[idx].Completed
	desired := c.items[idx].Completed
	c.seq[id]++
	mySeq := c.seq[id]
	c.mu.Unlock()

	err := c.api.UpdateItem(ctx, id, api.ItemPatch{Completed: &desired})

	c.mu.Lock()
	stale := c.seq[id] != mySeq
	c.mu.Unlock()
	if stale {
		c.log.Debug("dropping stale toggle confirmation", "id", id, "seq", mySeq)
		return nil
	}
	if err != nil {
		c.notify.Error("failed to update item, list resynced")
		if rerr := c.Refresh(ctx); rerr != nil {
			c.log.Warn("resync after failed toggle also failed", "error", rerr)
		}
		return err
	}
	return nil
}

// Delete asks the service first and removes the item only on success.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	name := ""
	if idx := c.indexOf(id); idx >= 0 {
		name = c.items[idx].Name
	}
	c.mu.Unlock()

	if err := c.api.DeleteItem(ctx, id); err != nil {
		if name != "" {
			c.notify.Error(fmt.Sprintf("failed to delete %q, please try again", name))
		} else {
			c.notify.Error("failed to delete item, please try again")
		}
		return err
	}

	c.mu.Lock()
	if idx := c.indexOf(id); idx >= 0 {
		c.items = append(c.items[:idx], c.items[idx+1:]...)
	}
	c.mu.Unlock()
	if name != "" {
		c.notify.Success(fmt.Sprintf("%q removed from your list", name))
	}
	return nil
}

// DeleteCategory removes every item of a category server-side, then
// resynchronizes rather than guessing which records the service dropped.
func (c *Controller) DeleteCategory(ctx context.Context, category string) error {
	if category == "" || category == model.FilterAll {
		verr := &api.ValidationError{Message: "please select a category to clear"}
		c.notify.Error(verr.Message)
		return verr
	}
	if err := c.api.DeleteCategoryItems(ctx, category); err != nil {
		c.notify.Error(fmt.Sprintf("failed to clear %s items, please try again", category))
		return err
	}
	c.notify.Success(fmt.Sprintf("cleared %s items", category))
	return c.Refresh(ctx)
}

// FilteredView projects the canonical set by category without mutating it.
// "all" (or empty) is the identity filter; relative order is preserved.
func (c *Controller) FilteredView(category string) []model.GroceryItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.GroceryItem, 0, len(c.items))
	for _, it := range c.items {
		if category == "" || category == model.FilterAll || it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

// Items returns a copy of the whole canonical set.
func (c *Controller) Items() []model.GroceryItem {
	return c.FilteredView(model.FilterAll)
}

func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// indexOf is called with the mutex held.
func (c *Controller) indexOf(id string) int {
	for i, it := range c.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
