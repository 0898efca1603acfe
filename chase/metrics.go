package chase

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts chase activity. A nil *Metrics records nothing.
type Metrics struct {
	chases        prometheus.Counter
	unresolvedTot prometheus.Counter
	earlyExits    prometheus.Counter
	matches       prometheus.Counter
	linksExamined prometheus.Counter
}

// NewMetrics creates the chase counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		chases: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "chases_total",
				Help: "number of chases started",
			},
		),
		unresolvedTot: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "chase_unresolved_starts_total",
				Help: "number of chases whose start handle did not resolve",
			},
		),
		earlyExits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "chase_early_exits_total",
				Help: "number of chases halted by a visitor",
			},
		),
		matches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "chase_matches_total",
				Help: "number of visitor invocations across all chases",
			},
		),
		linksExamined: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "chase_links_examined_total",
				Help: "number of incoming links of the requested type whose outgoing set was walked",
			},
		),
	}

	reg.MustRegister(m.chases)
	reg.MustRegister(m.unresolvedTot)
	reg.MustRegister(m.earlyExits)
	reg.MustRegister(m.matches)
	reg.MustRegister(m.linksExamined)
	return m
}

func (m *Metrics) started() {
	if m == nil {
		return
	}
	m.chases.Inc()
}

func (m *Metrics) unresolved() {
	if m == nil {
		return
	}
	m.unresolvedTot.Inc()
}

func (m *Metrics) finished(examined, matched int, stopped bool) {
	if m == nil {
		return
	}
	m.linksExamined.Add(float64(examined))
	m.matches.Add(float64(matched))
	if stopped {
		m.earlyExits.Inc()
	}
}
