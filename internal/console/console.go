package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
	"github.com/vladislavdragonenkov/coffeeshop/internal/service/desk"
	"github.com/vladislavdragonenkov/coffeeshop/internal/service/payment"
)

const prompt = "coffeeshop> "

const helpText = `Commands:
  customer <name>                         subscribe SMS updates for a customer
  order <type> [options]                  place a single drink
  popular <type> [options]                place a drink with the house modifiers
  combo <name> <discount%> <type>[,...]   place a combo of default drinks
  status <id|last> <preparing|ready|completed>
  cancel <id|last>
  undo | redo | history | orders
  timeline <id|last>
  pay <id|last> cash <amount>
  pay <id|last> card <number> <holder> <cvv> <expiry>
  pay <id|last> mobile <phone> [app]
  pay <id|last> points <customer> <points>
  help | quit
Types: espresso, latte, cappuccino (or 1..3)
Options: size=S|M|L milk=<m> addon=<a> takeaway +shot +cream +caramel +syrup=<flavor>
`

// Console — текстовый интерфейс оператора поверх Desk.
type Console struct {
	desk   *desk.Desk
	out    io.Writer
	logger *log.Entry
}

func New(d *desk.Desk, out io.Writer, logger *log.Entry) *Console {
	if logger == nil {
		logger = log.WithField("component", "console")
	}
	return &Console{desk: d, out: out, logger: logger}
}

// Run читает команды до quit, конца ввода или отмены контекста.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	c.printf("%s", prompt)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if quit := c.Execute(scanner.Text()); quit {
			return nil
		}
		c.printf("%s", prompt)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read console input: %w", err)
	}
	return nil
}

// Execute выполняет одну строку и сообщает, пора ли завершаться.
// Ошибки команды печатаются оператору и не прерывают сессию.
func (c *Console) Execute(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch name {
	case "quit", "exit":
		c.printf("Goodbye!\n")
		return true
	case "help", "?":
		c.printf("%s", helpText)
	case "customer":
		err = c.customer(args)
	case "order":
		err = c.order(args, false)
	case "popular":
		err = c.order(args, true)
	case "combo":
		err = c.combo(args)
	case "status":
		err = c.status(args)
	case "cancel":
		err = c.cancel(args)
	case "undo":
		err = c.undo()
	case "redo":
		err = c.redo()
	case "history":
		c.history()
	case "orders":
		c.orders()
	case "timeline":
		err = c.timeline(args)
	case "pay":
		err = c.pay(args)
	default:
		err = fmt.Errorf("unknown command %q, type help", name)
	}

	if err != nil {
		c.logger.WithError(err).WithField("command", name).Debug("console command failed")
		c.printf("Error: %v\n", err)
	}
	return false
}

func (c *Console) customer(args []string) error {
	name := strings.Join(args, " ")
	if err := c.desk.SetCustomer(name); err != nil {
		return err
	}
	if name == "" {
		c.printf("Customer notifications disabled\n")
		return nil
	}
	c.printf("Customer set to %s\n", name)
	return nil
}

func (c *Console) order(args []string, popular bool) error {
	d, err := parseDrink(args)
	if err != nil {
		return err
	}

	if !popular {
		single, err := c.desk.OrderDecorated(d.typ, d.request, d.modifiers...)
		if err != nil {
			return err
		}
		return c.place(single)
	}

	single, err := c.desk.OrderPopular(d.typ, d.request)
	if err != nil {
		return err
	}
	if len(d.modifiers) > 0 {
		// Дополнительные добавки идут после фирменных.
		mods := append(append([]domain.Modifier(nil), single.Modifiers...), d.modifiers...)
		if single, err = domain.NewSingleOrder(single.Coffee, single.BaseMinor, mods...); err != nil {
			return err
		}
	}
	return c.place(single)
}

func (c *Console) combo(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: combo <name> <discount%%> <type>[,<type>...]", errUsage)
	}
	discount, err := parseDiscount(args[1])
	if err != nil {
		return err
	}
	combo, err := c.desk.NewCombo(strings.ReplaceAll(args[0], "_", " "), discount)
	if err != nil {
		return err
	}

	for _, raw := range strings.Split(strings.Join(args[2:], ","), ",") {
		if raw = strings.TrimSpace(raw); raw == "" {
			continue
		}
		d, err := parseDrink([]string{raw})
		if err != nil {
			return err
		}
		item, err := c.desk.OrderSingle(d.typ, d.request)
		if err != nil {
			return err
		}
		if err := combo.Add(item); err != nil {
			return err
		}
	}
	if combo.ItemCount() == 0 {
		return fmt.Errorf("%w: combo needs at least one drink", errUsage)
	}
	return c.place(combo)
}

func (c *Console) place(order domain.OrderComponent) error {
	id, err := c.desk.Place(order)
	if err != nil {
		return err
	}
	c.printf("%s", c.desk.Summary(order))
	c.printf("Order #%s placed\n", id)
	return nil
}

func (c *Console) status(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: status <id|last> <preparing|ready|completed>", errUsage)
	}
	id, err := c.resolveID(args[0])
	if err != nil {
		return err
	}
	status, err := domain.ParseOrderStatus(args[1])
	if err != nil {
		return err
	}
	if status == domain.OrderStatusCancelled {
		return c.cancel(args[:1])
	}
	if err := c.desk.UpdateStatus(id, status); err != nil {
		return err
	}
	c.printf("Order #%s -> %s\n", id, status.Title())
	return nil
}

func (c *Console) cancel(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: cancel <id|last>", errUsage)
	}
	id, err := c.resolveID(args[0])
	if err != nil {
		return err
	}
	c.desk.Cancel(id)
	c.printf("Cancel requested for order #%s\n", id)
	return nil
}

func (c *Console) undo() error {
	rec, err := c.desk.Undo()
	if err != nil {
		return err
	}
	c.printf("Undone: %s\n", rec.Description)
	return nil
}

func (c *Console) redo() error {
	rec, err := c.desk.Redo()
	if err != nil {
		return err
	}
	c.printf("Redone: %s\n", rec.Command().Describe())
	return nil
}

func (c *Console) history() {
	records := c.desk.History()
	if len(records) == 0 {
		c.printf("No commands yet\n")
		return
	}
	for i, rec := range records {
		c.printf("%d. %s\n", i+1, rec.Description)
	}
}

func (c *Console) orders() {
	records := c.desk.Orders()
	if len(records) == 0 {
		c.printf("No orders yet\n")
		return
	}
	for _, rec := range records {
		c.printf("#%s [%s] %s %s\n", rec.ID, rec.Entry.Status.Title(),
			rec.Entry.Order.Description(), domain.FormatMinor(rec.Entry.Order.TotalMinor()))
	}
}

func (c *Console) timeline(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: timeline <id|last>", errUsage)
	}
	id, err := c.resolveID(args[0])
	if err != nil {
		return err
	}
	events, err := c.desk.Timeline(id)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		c.printf("No events for order #%s\n", id)
		return nil
	}
	for _, event := range events {
		c.printf("%s %s %s\n", event.Occurred.Format("15:04:05"), event.Type, event.Reason)
	}
	return nil
}

func (c *Console) pay(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: pay <id|last> <cash|card|mobile|points> ...", errUsage)
	}
	id, err := c.resolveID(args[0])
	if err != nil {
		return err
	}
	strategy, err := parseStrategy(args[1], args[2:])
	if err != nil {
		return err
	}

	c.desk.SetPayment(strategy)
	receipt, err := c.desk.PayOrder(id)
	if err != nil {
		return err
	}
	c.printf("Paid order #%s with %s (ref %s)\n", id, receipt.Method, receipt.Reference)
	for _, line := range receipt.Details {
		c.printf("  %s\n", line)
	}
	return nil
}

func parseStrategy(kind string, args []string) (payment.Strategy, error) {
	switch strings.ToLower(kind) {
	case payment.KindCash:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: pay <id> cash <amount>", errUsage)
		}
		amount, err := parseMoney(args[0])
		if err != nil {
			return nil, err
		}
		return payment.NewCash(amount), nil
	case payment.KindCard:
		if len(args) != 4 {
			return nil, fmt.Errorf("%w: pay <id> card <number> <holder> <cvv> <expiry>", errUsage)
		}
		return payment.NewCreditCard(args[0], strings.ReplaceAll(args[1], "_", " "), args[2], args[3]), nil
	case payment.KindMobile:
		if len(args) < 1 {
			return nil, fmt.Errorf("%w: pay <id> mobile <phone> [app]", errUsage)
		}
		return payment.NewMobile(args[0], strings.Join(args[1:], " ")), nil
	case payment.KindPoints:
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: pay <id> points <customer> <points>", errUsage)
		}
		points, err := strconv.Atoi(args[1])
		if err != nil || points < 0 {
			return nil, fmt.Errorf("%w: points must be a non-negative integer", errUsage)
		}
		return payment.NewLoyaltyPoints(args[0], points), nil
	default:
		return nil, fmt.Errorf("%w: unknown payment method %q", errUsage, kind)
	}
}

// resolveID подставляет идентификатор последнего заказа вместо "last".
func (c *Console) resolveID(raw string) (string, error) {
	if !strings.EqualFold(raw, "last") {
		return strings.TrimPrefix(raw, "#"), nil
	}
	id := c.desk.LastOrderID()
	if id == "" {
		return "", errors.New("no orders placed yet")
	}
	return id, nil
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}
