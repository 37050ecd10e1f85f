package runtime

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects runtime counters. One Metrics may be shared by many
// runtimes; memory_bytes is the sum over the live ones.
type Metrics struct {
	memoryBytes prometheus.Gauge
	memoryGrows prometheus.Counter
	nativeCalls *prometheus.CounterVec
	faults      *prometheus.CounterVec
}

// NewMetrics registers the runtime collectors on reg, or on the default
// registerer when reg is nil.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		memoryBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_bytes",
			Help:      "Linear memory currently allocated by live runtimes",
		}),
		memoryGrows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memory_grow_total",
			Help:      "Successful linear memory growths",
		}),
		nativeCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "native_calls_total",
			Help:      "Native imports invoked through the trampoline",
		}, []string{"module", "field"}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faults_total",
			Help:      "Faults raised, by kind",
		}, []string{"kind"}),
	}

	for _, c := range []prometheus.Collector{m.memoryBytes, m.memoryGrows, m.nativeCalls, m.faults} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) addMemory(delta int) {
	if m == nil {
		return
	}
	m.memoryBytes.Add(float64(delta))
}

func (m *Metrics) grew(delta int) {
	if m == nil {
		return
	}
	m.memoryGrows.Inc()
	m.memoryBytes.Add(float64(delta))
}

func (m *Metrics) nativeCall(module, field string) {
	if m == nil {
		return
	}
	m.nativeCalls.WithLabelValues(module, field).Inc()
}

func (m *Metrics) fault(kind string) {
	if m == nil {
		return
	}
	m.faults.WithLabelValues(kind).Inc()
}
