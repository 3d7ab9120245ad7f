package submission

import "time"

// Default timings.
const (
	DefaultSimulatedLatency = 1000 * time.Millisecond
	DefaultPanelLifetime    = 5000 * time.Millisecond
)

// Settings is the immutable behaviour configuration of a Controller.
type Settings struct {
	Endpoints Endpoints
	// Simulation replaces the network call by a fixed delay followed by an
	// unconditional success. It must be enabled explicitly.
	Simulation       bool
	SimulatedLatency time.Duration
	// PanelLifetime is how long an error panel stays before it is removed.
	PanelLifetime time.Duration
	// PageURL is reported as pageUrl in every payload.
	PageURL string
	Hidden  []HiddenField
}

// DefaultSettings returns live-mode settings with the default endpoints.
func DefaultSettings() Settings {
	return Settings{
		Endpoints:        DefaultEndpoints(),
		SimulatedLatency: DefaultSimulatedLatency,
		PanelLifetime:    DefaultPanelLifetime,
	}
}

func (s Settings) withDefaults() Settings {
	if s.Endpoints == nil {
		s.Endpoints = DefaultEndpoints()
	}
	if s.SimulatedLatency <= 0 {
		s.SimulatedLatency = DefaultSimulatedLatency
	}
	if s.PanelLifetime <= 0 {
		s.PanelLifetime = DefaultPanelLifetime
	}
	return s
}
