package command

import (
	"fmt"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
)

// Kind — вид команды для истории и метрик.
type Kind string

const (
	KindPlaceOrder   Kind = "place_order"
	KindCancelOrder  Kind = "cancel_order"
	KindUpdateStatus Kind = "update_status"
)

// Command — обратимая операция над хранилищем заказов.
type Command interface {
	Apply()
	Undo()
	Describe() string
	Kind() Kind
}

// PlaceOrder размещает заказ. Повторное применение после отмены выдаёт новый идентификатор.
type PlaceOrder struct {
	store   domain.OrderStore
	order   domain.OrderComponent
	orderID string
}

func NewPlaceOrder(store domain.OrderStore, order domain.OrderComponent) *PlaceOrder {
	return &PlaceOrder{store: store, order: order}
}

func (c *PlaceOrder) Apply() {
	c.orderID = c.store.Place(c.order)
}

func (c *PlaceOrder) Undo() {
	if c.orderID == "" {
		return
	}
	c.store.Remove(c.orderID)
}

// OrderID возвращает идентификатор, выданный последним Apply.
func (c *PlaceOrder) OrderID() string { return c.orderID }

func (c *PlaceOrder) Describe() string {
	id := c.orderID
	if id == "" {
		id = "pending"
	}
	return fmt.Sprintf("Place Order #%s: %s", id, c.order.Description())
}

func (c *PlaceOrder) Kind() Kind { return KindPlaceOrder }

// CancelOrder отменяет заказ, запоминая запись до отмены.
type CancelOrder struct {
	store    domain.OrderStore
	orderID  string
	snapshot domain.OrderEntry
	captured bool
}

func NewCancelOrder(store domain.OrderStore, orderID string) *CancelOrder {
	return &CancelOrder{store: store, orderID: orderID}
}

func (c *CancelOrder) Apply() {
	c.snapshot, c.captured = c.store.Entry(c.orderID)
	c.store.Cancel(c.orderID)
}

// Undo восстанавливает запись; если заказа не было при Apply, ничего не делает.
func (c *CancelOrder) Undo() {
	if !c.captured {
		return
	}
	c.store.Restore(c.orderID, c.snapshot)
}

func (c *CancelOrder) Describe() string { return fmt.Sprintf("Cancel Order #%s", c.orderID) }

func (c *CancelOrder) Kind() Kind { return KindCancelOrder }

// UpdateStatus меняет статус, запоминая предыдущий.
type UpdateStatus struct {
	store    domain.OrderStore
	orderID  string
	status   domain.OrderStatus
	previous domain.OrderStatus
	captured bool
}

func NewUpdateStatus(store domain.OrderStore, orderID string, status domain.OrderStatus) *UpdateStatus {
	return &UpdateStatus{store: store, orderID: orderID, status: status}
}

func (c *UpdateStatus) Apply() {
	c.previous, c.captured = c.store.Status(c.orderID)
	c.store.UpdateStatus(c.orderID, c.status)
}

func (c *UpdateStatus) Undo() {
	if !c.captured {
		return
	}
	c.store.UpdateStatus(c.orderID, c.previous)
}

func (c *UpdateStatus) Describe() string {
	return fmt.Sprintf("Update Order #%s to %s", c.orderID, c.status.Title())
}

func (c *UpdateStatus) Kind() Kind { return KindUpdateStatus }

var (
	_ Command = (*PlaceOrder)(nil)
	_ Command = (*CancelOrder)(nil)
	_ Command = (*UpdateStatus)(nil)
)
