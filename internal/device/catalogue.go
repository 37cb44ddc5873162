package device

import "fmt"

// Variant identifies a device variant.
type Variant string

// Variant constants.
const (
	VariantPhone  Variant = "phone"
	VariantTablet Variant = "tablet"
)

// Descriptor describes a variant and the capabilities it exposes.
type Descriptor struct {
	Variant      Variant      `json:"variant"`
	Capabilities []Capability `json:"capabilities"`
}

// Catalogue maps each variant to one shared device instance.
//
// Devices are stateless, so a single instance per variant serves every
// request. The catalogue is immutable after NewCatalogue returns and is
// safe for concurrent use.
type Catalogue struct {
	order   []Variant
	devices map[Variant]Basic
}

// NewCatalogue creates a catalogue holding the phone and tablet variants.
func NewCatalogue() *Catalogue {
	return &Catalogue{
		order: []Variant{VariantPhone, VariantTablet},
		devices: map[Variant]Basic{
			VariantPhone:  Phone{},
			VariantTablet: Tablet{},
		},
	}
}

// Lookup returns the shared instance for a variant.
// Returns ErrUnknownVariant if the variant is not in the catalogue.
func (c *Catalogue) Lookup(v Variant) (Basic, error) {
	dev, ok := c.devices[v]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, string(v))
	}
	return dev, nil
}

// Variants returns all variants in catalogue order.
func (c *Catalogue) Variants() []Variant {
	out := make([]Variant, len(c.order))
	copy(out, c.order)
	return out
}

// Describe returns the capability descriptor for a variant.
func (c *Catalogue) Describe(v Variant) (Descriptor, error) {
	dev, err := c.Lookup(v)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Variant: v, Capabilities: CapabilitiesOf(dev)}, nil
}

// DescribeAll returns descriptors for every variant in catalogue order.
func (c *Catalogue) DescribeAll() []Descriptor {
	out := make([]Descriptor, 0, len(c.order))
	for _, v := range c.order {
		out = append(out, Descriptor{Variant: v, Capabilities: CapabilitiesOf(c.devices[v])})
	}
	return out
}
