package notify

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Messages builds the human-readable notification texts for one locale.
//
// The storefront runs in a single locale per session, so a Messages value
// is constructed once alongside the store and reused for every
// notification. Amounts are formatted with locale-aware digit grouping.
type Messages struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewMessages creates a message builder for the given language and currency.
func NewMessages(tag language.Tag, unit currency.Unit) *Messages {
	return &Messages{
		printer: message.NewPrinter(tag),
		unit:    unit,
	}
}

// DefaultMessages returns the en-US / USD builder used when no locale is
// configured.
func DefaultMessages() *Messages {
	return NewMessages(language.AmericanEnglish, currency.USD)
}

// ItemAdded reports a new cart line. name is the item title, or its id
// when the caller attached no title.
func (m *Messages) ItemAdded(name string) string {
	return m.printer.Sprintf("%s added to cart", name)
}

// QuantityIncreased reports an increment on an existing line.
func (m *Messages) QuantityIncreased(name string) string {
	return m.printer.Sprintf("%s quantity increased", name)
}

// QuantityDecreased reports a decrement on an existing line.
func (m *Messages) QuantityDecreased(name string) string {
	return m.printer.Sprintf("%s quantity decreased", name)
}

// ItemRemoved reports a line deleted from the cart.
func (m *Messages) ItemRemoved(name string) string {
	return m.printer.Sprintf("%s removed from cart", name)
}

// CartCleared reports the cart being emptied.
func (m *Messages) CartCleared() string {
	return m.printer.Sprintf("Cart cleared")
}

// PersistWarning reports a failed durable write.
func (m *Messages) PersistWarning(err error) string {
	return m.printer.Sprintf("Cart could not be saved, changes kept in memory: %v", err)
}

// FormatAmount renders a monetary amount with the configured currency
// code and locale grouping, e.g. "USD 1,234.50".
func (m *Messages) FormatAmount(amount float64) string {
	return m.printer.Sprintf("%v %.2f", m.unit, amount)
}
