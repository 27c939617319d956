package command

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
	"github.com/vladislavdragonenkov/coffeeshop/internal/storage/memory"
)

type eventLog struct{ events []string }

func (e *eventLog) NotifyPlaced(id string, _ domain.OrderComponent) {
	e.events = append(e.events, "placed:"+id)
}
func (e *eventLog) NotifyRestored(id string, _ domain.OrderComponent, status domain.OrderStatus) {
	e.events = append(e.events, "restored:"+id+":"+string(status))
}
func (e *eventLog) NotifyPreparing(id string) { e.events = append(e.events, "preparing:"+id) }
func (e *eventLog) NotifyReady(id string)     { e.events = append(e.events, "ready:"+id) }
func (e *eventLog) NotifyCancelled(id string) { e.events = append(e.events, "cancelled:"+id) }

type commandCounter struct{ calls []string }

func (c *commandCounter) RecordCommand(kind, action string) {
	c.calls = append(c.calls, kind+"/"+action)
}

func newFixture(t *testing.T) (domain.OrderStore, *History, *eventLog) {
	t.Helper()
	events := &eventLog{}
	return memory.NewOrderStore(events, nil), NewHistory(nil, nil), events
}

func latte(t *testing.T) domain.OrderComponent {
	t.Helper()
	order, err := domain.NewSingleOrder(domain.Coffee{Name: "Latte", Size: domain.SizeMedium}, 350)
	require.NoError(t, err)
	return order
}

func status(t *testing.T, store domain.OrderStore, id string) domain.OrderStatus {
	t.Helper()
	s, ok := store.Status(id)
	require.True(t, ok, "order %s must exist", id)
	return s
}

func TestHistory_EmptyUndoRedo(t *testing.T) {
	_, history, _ := newFixture(t)

	_, err := history.Undo()
	require.ErrorIs(t, err, domain.ErrNothingToUndo)
	_, err = history.Redo()
	require.ErrorIs(t, err, domain.ErrNothingToRedo)
	require.False(t, history.CanUndo())
	require.False(t, history.CanRedo())
}

func TestHistory_PlaceUndoRedo(t *testing.T) {
	store, history, events := newFixture(t)

	place := NewPlaceOrder(store, latte(t))
	history.Execute(place)
	require.Equal(t, "1001", place.OrderID())
	require.Equal(t, 1, store.Len())

	_, err := history.Undo()
	require.NoError(t, err)
	require.Equal(t, 0, store.Len())

	rec, err := history.Redo()
	require.NoError(t, err)
	require.Equal(t, "1002", place.OrderID(), "redo of a placement allocates a fresh id")
	require.Equal(t, domain.OrderStatusPlaced, status(t, store, "1002"))
	require.Contains(t, rec.Description, "#1002")

	require.Equal(t, []string{"placed:1001", "cancelled:1001", "placed:1002"}, events.events)
}

func TestHistory_StatusScenario(t *testing.T) {
	store, history, _ := newFixture(t)

	place := NewPlaceOrder(store, latte(t))
	history.Execute(place)
	id := place.OrderID()
	require.Equal(t, "1001", id)

	history.Execute(NewUpdateStatus(store, id, domain.OrderStatusPreparing))
	require.Equal(t, domain.OrderStatusPreparing, status(t, store, id))

	_, err := history.Undo()
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPlaced, status(t, store, id))

	_, err = history.Redo()
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPreparing, status(t, store, id))
}

func TestHistory_CancelUndoRestoresPlaced(t *testing.T) {
	store, history, events := newFixture(t)

	place := NewPlaceOrder(store, latte(t))
	history.Execute(place)
	id := place.OrderID()

	history.Execute(NewCancelOrder(store, id))
	require.Equal(t, domain.OrderStatusCancelled, status(t, store, id))

	_, err := history.Undo()
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPlaced, status(t, store, id))

	require.Equal(t, []string{"placed:1001", "cancelled:1001", "restored:1001:placed"}, events.events)
}

func TestHistory_CancelUndoRestoresPreviousStatus(t *testing.T) {
	store, history, _ := newFixture(t)

	place := NewPlaceOrder(store, latte(t))
	history.Execute(place)
	id := place.OrderID()
	history.Execute(NewUpdateStatus(store, id, domain.OrderStatusReady))
	history.Execute(NewCancelOrder(store, id))

	_, err := history.Undo()
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusReady, status(t, store, id))
}

func TestHistory_UnknownOrderCommandsAreSilent(t *testing.T) {
	store, history, events := newFixture(t)

	history.Execute(NewCancelOrder(store, "4242"))
	history.Execute(NewUpdateStatus(store, "4242", domain.OrderStatusReady))
	require.Equal(t, 2, history.Len())

	_, err := history.Undo()
	require.NoError(t, err)
	_, err = history.Undo()
	require.NoError(t, err)

	require.Empty(t, events.events)
	require.Equal(t, 0, store.Len())
}

func TestHistory_ExecuteClearsRedo(t *testing.T) {
	store, history, _ := newFixture(t)

	history.Execute(NewPlaceOrder(store, latte(t)))
	_, err := history.Undo()
	require.NoError(t, err)
	require.True(t, history.CanRedo())

	history.Execute(NewPlaceOrder(store, latte(t)))
	require.False(t, history.CanRedo())
	_, err = history.Redo()
	require.ErrorIs(t, err, domain.ErrNothingToRedo)
}

func TestHistory_UndoRedoEqualsExecute(t *testing.T) {
	store, history, _ := newFixture(t)

	place := NewPlaceOrder(store, latte(t))
	history.Execute(place)
	id := place.OrderID()

	history.Execute(NewUpdateStatus(store, id, domain.OrderStatusPreparing))
	history.Execute(NewUpdateStatus(store, id, domain.OrderStatusReady))
	afterExecute := store.List()

	for i := 0; i < 2; i++ {
		_, err := history.Undo()
		require.NoError(t, err)
	}
	require.Equal(t, domain.OrderStatusPlaced, status(t, store, id))

	for i := 0; i < 2; i++ {
		_, err := history.Redo()
		require.NoError(t, err)
	}
	require.Equal(t, afterExecute, store.List())
}

func TestHistory_RecordsAndMetrics(t *testing.T) {
	store := memory.NewOrderStore(nil, nil)
	counter := &commandCounter{}
	history := NewHistory(nil, counter)

	first := history.Execute(NewPlaceOrder(store, latte(t)))
	second := history.Execute(NewUpdateStatus(store, "1001", domain.OrderStatusReady))

	records := history.Records()
	require.Len(t, records, 2)
	require.Equal(t, first.ID, records[0].ID)
	require.Equal(t, second.ID, records[1].ID)
	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, KindPlaceOrder, records[0].Kind)
	require.Equal(t, "Update Order #1001 to Ready for Pickup", records[1].Description)
	require.False(t, records[0].AppliedAt.IsZero())

	_, err := history.Undo()
	require.NoError(t, err)
	_, err = history.Redo()
	require.NoError(t, err)

	require.Equal(t, []string{
		"place_order/execute",
		"update_status/execute",
		"update_status/undo",
		"update_status/redo",
	}, counter.calls)
}
