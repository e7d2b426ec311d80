// Package charging simulates charging sessions at EV sites. Sessions run
// concurrently and raise alerts through the manager bound to their context
// when payment, the connector or the network fails.
package charging

import (
	"fmt"
	"time"

	"github.com/jask/voltalert/internal/database/repository"
)

// State is a session lifecycle stage.
type State string

const (
	StateIdle        State = "idle"
	StateAuthorizing State = "authorizing"
	StateCharging    State = "charging"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
)

// Terminal reports whether no further transitions follow.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Failure names why a session ended in StateFailed.
type Failure string

const (
	FailureNone                 Failure = ""
	FailurePaymentDeclined      Failure = "payment_declined"
	FailureConnectorUnavailable Failure = "connector_unavailable"
	FailureNetworkDown          Failure = "network_down"
	FailureCancelled            Failure = "cancelled"
)

var failures = []Failure{FailurePaymentDeclined, FailureConnectorUnavailable, FailureNetworkDown}

// Site is a charging location.
type Site struct {
	Name       string
	Connectors int
}

// DefaultSites is used when a simulator has none configured.
var DefaultSites = []Site{
	{Name: "Oslo S", Connectors: 6},
	{Name: "Bergen Bryggen", Connectors: 4},
	{Name: "Trondheim Solsiden", Connectors: 8},
	{Name: "Stavanger Forum", Connectors: 2},
}

// Session is a snapshot of one charging session.
type Session struct {
	ID        string
	Site      string
	Connector int
	State     State
	EnergyWh  int64
	Failure   Failure
	StartedAt time.Time
	UpdatedAt time.Time
}

// Label identifies the charge point, e.g. "Oslo S #2".
func (s Session) Label() string {
	return fmt.Sprintf("%s #%d", s.Site, s.Connector)
}

func (s Session) shortID() string {
	if len(s.ID) > 8 {
		return s.ID[:8]
	}
	return s.ID
}

// KWh returns delivered energy in kilowatt hours.
func (s Session) KWh() float64 {
	return float64(s.EnergyWh) / 1000
}

func (s Session) row() repository.ChargingSession {
	return repository.ChargingSession{
		ID:        s.ID,
		Site:      s.Site,
		Connector: s.Connector,
		State:     string(s.State),
		EnergyWh:  s.EnergyWh,
		Failure:   string(s.Failure),
		StartedAt: s.StartedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// Plan fixes the outcome of a session up front so runs are reproducible.
type Plan struct {
	Site          Site
	Connector     int
	Steps         int     // charging ticks before completion
	WhPerStep     int64   // energy added per tick
	Failure       Failure // FailureNone completes normally
	FailAt        int     // tick at which FailureNetworkDown hits
	RetryDeclined bool    // a retried payment is declined again
}
