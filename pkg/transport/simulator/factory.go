package simulator

import "github.com/meshx-project/meshx/pkg/transport"

// Factory constructs unpaired simulator transports, grounded on the
// teacher's per-transport Factory pattern (pkg/transport/ble.Factory).
type Factory struct{}

// NewFactory constructs a Factory.
func NewFactory() *Factory { return &Factory{} }

// Type implements transport.Factory.
func (f *Factory) Type() string { return "simulator" }

// Create implements transport.Factory. The simulator ignores config.Options;
// an unpaired Transport never delivers inbound frames, which is sufficient
// for exercising the node lifecycle without a real bearer.
func (f *Factory) Create(config transport.Config) (transport.Transport, error) {
	return New(), nil
}

// Validate implements transport.Factory. The simulator has no required
// configuration fields.
func (f *Factory) Validate(config transport.Config) error {
	return nil
}
