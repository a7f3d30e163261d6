package commodities

import "github.com/google/uuid"

// Namespace groups commodities by kind.
const (
	NamespaceCurrency = "CURRENCY"
	NamespaceStock    = "STOCK"
	NamespaceMutual   = "FUND"
	NamespaceTemplate = "template"
)

// Commodity identifies a currency or tradable instrument. Fraction is the
// default denominator for amounts recorded in this commodity (100 for most
// currencies).
type Commodity struct {
	GUID        uuid.UUID
	Namespace   string
	Mnemonic    string
	Fullname    string
	Fraction    int64
	QuoteSource *string
}

// IsCurrency reports whether the commodity lives in the CURRENCY namespace.
func (c Commodity) IsCurrency() bool {
	return c.Namespace == NamespaceCurrency
}

// Key returns the globally readable identity "NAMESPACE:MNEMONIC".
func (c Commodity) Key() string {
	return c.Namespace + ":" + c.Mnemonic
}
