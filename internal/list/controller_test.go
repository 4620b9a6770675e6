package list

import (
	"context"
	"errors"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/grocer/internal/api"
	"github.com/idilsaglam/grocer/internal/model"
	"github.com/idilsaglam/grocer/internal/notify"
)

type fakeAPI struct {
	itemsFn     func(context.Context) ([]model.GroceryItem, error)
	addFn       func(context.Context, model.GroceryItem) (model.GroceryItem, error)
	updateFn    func(context.Context, string, api.ItemPatch) error
	deleteFn    func(context.Context, string) error
	deleteCatFn func(context.Context, string) error

	itemsCalls  int
	addCalls    int
	updateCalls int
	deleteCalls int
}

func (f *fakeAPI) Items(ctx context.Context) ([]model.GroceryItem, error) {
	f.itemsCalls++
	if f.itemsFn != nil {
		return f.itemsFn(ctx)
	}
	return nil, nil
}

func (f *fakeAPI) AddItem(ctx context.Context, item model.GroceryItem) (model.GroceryItem, error) {
	f.addCalls++
	if f.addFn != nil {
		return f.addFn(ctx, item)
	}
	return item, nil
}

func (f *fakeAPI) UpdateItem(ctx context.Context, id string, patch api.ItemPatch) error {
	f.updateCalls++
	if f.updateFn != nil {
		return f.updateFn(ctx, id, patch)
	}
	return nil
}

func (f *fakeAPI) DeleteItem(ctx context.Context, id string) error {
	f.deleteCalls++
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeAPI) DeleteCategoryItems(ctx context.Context, category string) error {
	if f.deleteCatFn != nil {
		return f.deleteCatFn(ctx, category)
	}
	return nil
}

func newTestController(f *fakeAPI) (*Controller, *notify.Queue) {
	q := notify.NewQueue(clockwork.NewFakeClock())
	return NewController(f, q), q
}

func kinds(q *notify.Queue) []notify.Kind {
	var out []notify.Kind
	for _, n := range q.Notifications() {
		out = append(out, n.Kind)
	}
	return out
}

func TestRefreshReplacesWholesale(t *testing.T) {
	f := &fakeAPI{itemsFn: func(context.Context) ([]model.GroceryItem, error) {
		return []model.GroceryItem{{ID: "1", Name: "Milk", Category: "Drinks"}}, nil
	}}
	c, _ := newTestController(f)

	require.NoError(t, c.Refresh(context.Background()))
	require.Equal(t, 1, c.Len())

	f.itemsFn = func(context.Context) ([]model.GroceryItem, error) {
		return []model.GroceryItem{
			{ID: "2", Name: "Apples", Category: "Fruits"},
			{ID: "3", Name: "Steak", Category: "Meat"},
		}, nil
	}
	require.NoError(t, c.Refresh(context.Background()))
	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Apples", items[0].Name)
}

func TestAddValidationFailsFast(t *testing.T) {
	f := &fakeAPI{}
	c, q := newTestController(f)

	err := c.Add(context.Background(), "   ", "Drinks")
	var verr *api.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, f.addCalls)
	assert.Equal(t, []notify.Kind{notify.KindError}, kinds(q))

	err = c.Add(context.Background(), "Milk", "")
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, f.addCalls)
}

func TestAddAppendsServerItem(t *testing.T) {
	f := &fakeAPI{addFn: func(_ context.Context, item model.GroceryItem) (model.GroceryItem, error) {
		item.ID = "srv-1"
		return item, nil
	}}
	c, q := newTestController(f)

	require.NoError(t, c.Add(context.Background(), "Milk", "Drinks"))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, model.GroceryItem{ID: "srv-1", Name: "Milk", Category: "Drinks"}, items[0])

	notes := q.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.KindSuccess, notes[0].Kind)
	assert.Contains(t, notes[0].Message, "Milk")
}

func TestAddFailureLeavesSetUnchanged(t *testing.T) {
	f := &fakeAPI{addFn: func(context.Context, model.GroceryItem) (model.GroceryItem, error) {
		return model.GroceryItem{}, &api.HTTPError{Status: 500, Message: "nope"}
	}}
	c, q := newTestController(f)

	err := c.Add(context.Background(), "Milk", "Drinks")
	require.Error(t, err)
	assert.Zero(t, c.Len())
	assert.Equal(t, []notify.Kind{notify.KindError}, kinds(q))
}

func seedOne(t *testing.T, c *Controller, f *fakeAPI, item model.GroceryItem) {
	t.Helper()
	f.itemsFn = func(context.Context) ([]model.GroceryItem, error) {
		return []model.GroceryItem{item}, nil
	}
	require.NoError(t, c.Refresh(context.Background()))
}

func TestToggleIsOptimisticAndPatchesOnlyCompletion(t *testing.T) {
	f := &fakeAPI{}
	c, _ := newTestController(f)
	seedOne(t, c, f, model.GroceryItem{ID: "x", Name: "Milk", Category: "Drinks", Completed: false})

	var sent api.ItemPatch
	var seenDuringFlight bool
	f.updateFn = func(_ context.Context, id string, patch api.ItemPatch) error {
		sent = patch
		// the flip must already be visible while the request is in flight
		seenDuringFlight = c.Items()[0].Completed
		return nil
	}

	require.NoError(t, c.Toggle(context.Background(), "x"))
	require.NotNil(t, sent.Completed)
	assert.True(t, *sent.Completed)
	assert.Nil(t, sent.Name)
	assert.Nil(t, sent.Category)
	assert.True(t, seenDuringFlight)
	assert.True(t, c.Items()[0].Completed)
}

func TestToggleRollbackGoesThroughRefresh(t *testing.T) {
	f := &fakeAPI{}
	c, q := newTestController(f)
	seedOne(t, c, f, model.GroceryItem{ID: "x", Name: "Milk", Category: "Drinks", Completed: false})

	f.updateFn = func(context.Context, string, api.ItemPatch) error {
		return &api.NetworkError{Cause: errors.New("refused")}
	}

	before := f.itemsCalls
	err := c.Toggle(context.Background(), "x")
	require.Error(t, err)

	// the authoritative value is restored by refetching, not by inverse-flipping
	assert.Equal(t, before+1, f.itemsCalls)
	assert.False(t, c.Items()[0].Completed)
	assert.Equal(t, []notify.Kind{notify.KindError}, kinds(q))
}

func TestToggleStaleConfirmationIsDropped(t *testing.T) {
	f := &fakeAPI{}
	c, q := newTestController(f)
	seedOne(t, c, f, model.GroceryItem{ID: "x", Name: "Milk", Category: "Drinks", Completed: false})

	refreshesBefore := f.itemsCalls
	f.updateFn = func(ctx context.Context, id string, patch api.ItemPatch) error {
		if f.updateCalls == 1 {
			// a newer toggle for the same item lands while this one is in flight
			inner := c.Toggle(ctx, id)
			require.NoError(t, inner)
			return errors.New("superseded request failed")
		}
		return nil
	}

	// The stale failure must not trigger a rollback: the newer toggle owns
	// the outcome.
	require.NoError(t, c.Toggle(context.Background(), "x"))
	assert.Equal(t, 2, f.updateCalls)
	assert.Equal(t, refreshesBefore, f.itemsCalls)
	assert.False(t, c.Items()[0].Completed)
	assert.Empty(t, kinds(q))
}

func TestToggleUnknownIDIsNoop(t *testing.T) {
	f := &fakeAPI{}
	c, _ := newTestController(f)

	require.NoError(t, c.Toggle(context.Background(), "ghost"))
	assert.Zero(t, f.updateCalls)
}

func TestDeleteRemovesOnlyAfterConfirmation(t *testing.T) {
	f := &fakeAPI{}
	c, q := newTestController(f)
	seedOne(t, c, f, model.GroceryItem{ID: "x", Name: "Milk", Category: "Drinks"})

	var lenDuringFlight int
	f.deleteFn = func(context.Context, string) error {
		lenDuringFlight = c.Len()
		return nil
	}

	require.NoError(t, c.Delete(context.Background(), "x"))
	assert.Equal(t, 1, lenDuringFlight)
	assert.Zero(t, c.Len())

	notes := q.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.KindSuccess, notes[0].Kind)
	assert.Contains(t, notes[0].Message, "Milk")
}

func TestDeleteFailureKeepsItemAndNamesIt(t *testing.T) {
	f := &fakeAPI{}
	c, q := newTestController(f)
	seedOne(t, c, f, model.GroceryItem{ID: "x", Name: "Milk", Category: "Drinks"})

	f.deleteFn = func(context.Context, string) error {
		return &api.HTTPError{Status: 500, Message: "nope"}
	}

	require.Error(t, c.Delete(context.Background(), "x"))
	assert.Equal(t, 1, c.Len())

	notes := q.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.KindError, notes[0].Kind)
	assert.Contains(t, notes[0].Message, "Milk")
}

func TestDeleteCategoryResynchronizes(t *testing.T) {
	f := &fakeAPI{}
	c, _ := newTestController(f)
	seedOne(t, c, f, model.GroceryItem{ID: "x", Name: "Milk", Category: "Drinks"})

	f.itemsFn = func(context.Context) ([]model.GroceryItem, error) {
		return []model.GroceryItem{}, nil
	}
	require.NoError(t, c.DeleteCategory(context.Background(), "Drinks"))
	assert.Zero(t, c.Len())
}

func TestFilteredViewIsPureAndOrderPreserving(t *testing.T) {
	f := &fakeAPI{itemsFn: func(context.Context) ([]model.GroceryItem, error) {
		return []model.GroceryItem{
			{ID: "1", Name: "Apples", Category: "Fruits"},
			{ID: "2", Name: "Milk", Category: "Drinks"},
			{ID: "3", Name: "Pears", Category: "Fruits"},
		}, nil
	}}
	c, _ := newTestController(f)
	require.NoError(t, c.Refresh(context.Background()))

	before := c.Items()

	fruits := c.FilteredView("Fruits")
	require.Len(t, fruits, 2)
	assert.Equal(t, "Apples", fruits[0].Name)
	assert.Equal(t, "Pears", fruits[1].Name)

	// identity filter and canonical set untouched
	assert.Len(t, c.FilteredView(model.FilterAll), 3)
	assert.Equal(t, before, c.Items())

	// mutating the view must not leak into the canonical set
	fruits[0].Name = "mutated"
	assert.Equal(t, "Apples", c.FilteredView("Fruits")[0].Name)
}
