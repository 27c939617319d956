package payment

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
)

// Результаты оплаты для метрик.
const (
	ResultOK       = "ok"
	ResultDeclined = "declined"
	ResultError    = "error"
)

// NoMethod — название способа оплаты, когда он не выбран.
const NoMethod = "None"

// Metrics учитывает попытки оплаты.
type Metrics interface {
	RecordPayment(method, result string)
}

// Processor хранит текущий способ оплаты и проводит платежи через него.
type Processor struct {
	mu       sync.RWMutex
	strategy Strategy

	logger  *log.Entry
	metrics Metrics
}

// NewProcessor создаёт процессор без выбранного способа оплаты. metrics может быть nil.
func NewProcessor(logger *log.Entry, metrics Metrics) *Processor {
	if logger == nil {
		logger = log.WithField("component", "payment-processor")
	}
	return &Processor{logger: logger, metrics: metrics}
}

// SetStrategy выбирает способ оплаты.
func (p *Processor) SetStrategy(strategy Strategy) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.strategy = strategy
}

// Method возвращает название текущего способа оплаты.
func (p *Processor) Method() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.strategy == nil {
		return NoMethod
	}
	return p.strategy.Method()
}

// Process списывает amountMinor текущим способом оплаты.
// Бизнес-отказы (domain.IsPaymentDeclined) можно повторить другим способом.
func (p *Processor) Process(amountMinor int64) (Receipt, error) {
	p.mu.RLock()
	strategy := p.strategy
	p.mu.RUnlock()

	if strategy == nil {
		p.logger.Warn("payment attempted without a payment method")
		return Receipt{}, domain.ErrNoPaymentMethod
	}
	kind := KindOf(strategy)
	if amountMinor < 0 {
		p.record(kind, ResultError)
		return Receipt{}, fmt.Errorf("%w: %d", domain.ErrPaymentAmountNegative, amountMinor)
	}

	logger := p.logger.WithFields(log.Fields{
		"method": strategy.Method(),
		"amount": domain.FormatMinor(amountMinor),
	})

	receipt, err := strategy.Pay(amountMinor)
	if err != nil {
		result := ResultError
		if domain.IsPaymentDeclined(err) {
			result = ResultDeclined
		}
		p.record(kind, result)
		logger.WithError(err).Info("payment declined")
		return Receipt{}, err
	}

	p.record(kind, ResultOK)
	logger.WithField("reference", receipt.Reference).Info("payment accepted")
	return receipt, nil
}

func (p *Processor) record(kind, result string) {
	if p.metrics != nil {
		p.metrics.RecordPayment(kind, result)
	}
}
