package inherents

import (
	"fmt"
)

// Provider produces one kind of inherent data on the block production and
// block verification paths. Providers may read non-deterministic sources
// such as the wall clock and must never be used inside state transitions.
type Provider interface {
	// Identifier returns the slot this provider fills.
	Identifier() Identifier
	// ProvideInherentData puts the provider's data into the given bag.
	ProvideInherentData(data *Data) error
	// ErrorToString renders an encoded check error that was reported for
	// this provider's identifier. It returns false if the bytes cannot be
	// decoded.
	ErrorToString(raw []byte) (string, bool)
}

// Providers is an ordered set of providers.
type Providers struct {
	providers []Provider
}

func NewProviders() *Providers {
	return &Providers{}
}

// Register adds a provider. Each identifier can only be registered once.
func (p *Providers) Register(provider Provider) error {
	for _, existing := range p.providers {
		if existing.Identifier() == provider.Identifier() {
			return fmt.Errorf("inherent data provider %s already registered", provider.Identifier())
		}
	}
	p.providers = append(p.providers, provider)
	return nil
}

// CreateInherentData collects the data of all registered providers.
func (p *Providers) CreateInherentData() (*Data, error) {
	data := NewData()
	for _, provider := range p.providers {
		err := provider.ProvideInherentData(data)
		if err != nil {
			return nil, fmt.Errorf("inherent data provider %s failed: %w", provider.Identifier(), err)
		}
	}
	return data, nil
}

// ErrorToString renders an encoded error using the provider registered for
// the identifier. Unknown identifiers and undecodable errors are rendered
// generically.
func (p *Providers) ErrorToString(id Identifier, raw []byte) string {
	for _, provider := range p.providers {
		if provider.Identifier() != id {
			continue
		}
		if msg, ok := provider.ErrorToString(raw); ok {
			return msg
		}
		return fmt.Sprintf("error for identifier %s could not be decoded", id)
	}
	return fmt.Sprintf("unhandled error for identifier %s", id)
}
