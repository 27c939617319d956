package payment

import "errors"

// ErrMockDeclined — отказ MockStrategy по умолчанию.
var ErrMockDeclined = errors.New("mock payment declined")

// MockStrategy — конфигурируемая заглушка Strategy для тестов.
type MockStrategy struct {
	Name string
	Err  error

	Calls   int
	Amounts []int64
}

// NewMockStrategy возвращает mock с успешным сценарием по умолчанию.
func NewMockStrategy() *MockStrategy {
	return &MockStrategy{Name: "Mock"}
}

func (m *MockStrategy) Method() string { return m.Name }

// Pay возвращает настроенную ошибку и запоминает суммы.
func (m *MockStrategy) Pay(amountMinor int64) (Receipt, error) {
	m.Calls++
	m.Amounts = append(m.Amounts, amountMinor)
	if m.Err != nil {
		return Receipt{}, m.Err
	}
	return newReceipt(m.Name, amountMinor), nil
}

var _ Strategy = (*MockStrategy)(nil)
