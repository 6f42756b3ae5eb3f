package storey

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gekko3d/storey/placement/engine"
	"github.com/gekko3d/storey/placement/events"
)

const metricsNamespace = "storey"

// Metrics exports placement counters on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	unitChanges  *prometheus.CounterVec
	floorChanges prometheus.Counter
	assetsLoaded prometheus.Counter
	rejected     prometheus.Counter
	saves        prometheus.Counter

	units        prometheus.Gauge
	activeFloor  prometheus.Gauge
	historyDepth prometheus.Gauge
	gridSize     prometheus.Gauge
	busPublished prometheus.Gauge

	server *http.Server
	subs   []events.Subscription
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		unitChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "unit_changes_total",
			Help:      "Unit changes by reason.",
		}, []string{"reason"}),
		floorChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "floor_changes_total",
			Help:      "Writes of the active floor.",
		}),
		assetsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "assets_loaded_total",
			Help:      "Assets loaded and registered as units.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "assets_rejected_total",
			Help:      "Asset loads that failed validation or loading.",
		}),
		saves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "layout_saves_total",
			Help:      "Completed writes of the layout document.",
		}),
		units: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "units",
			Help:      "Placed units.",
		}),
		activeFloor: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_floor",
			Help:      "Index of the active floor.",
		}),
		historyDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "history_depth",
			Help:      "Snapshots available to undo.",
		}),
		gridSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "grid_size",
			Help:      "Current horizontal snap size.",
		}),
		busPublished: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "bus_published",
			Help:      "Events published on the placement bus.",
		}),
	}
	m.Registry.MustRegister(
		m.unitChanges, m.floorChanges, m.assetsLoaded, m.rejected, m.saves,
		m.units, m.activeFloor, m.historyDepth, m.gridSize, m.busPublished,
	)
	return m
}

// Observe subscribes the counters to bus.
func (m *Metrics) Observe(bus *events.Bus) {
	m.subs = append(m.subs,
		events.Subscribe(bus, func(ev events.UnitChanged) { m.unitChanges.WithLabelValues(ev.Reason.String()).Inc() }),
		events.Subscribe(bus, func(events.FloorChanged) { m.floorChanges.Inc() }),
		events.Subscribe(bus, func(events.AssetLoaded) { m.assetsLoaded.Inc() }),
		events.Subscribe(bus, func(events.AssetRejected) { m.rejected.Inc() }),
		events.Subscribe(bus, func(events.LayoutSaved) { m.saves.Inc() }),
	)
}

// Sample refreshes the gauges from the engine.
func (m *Metrics) Sample(eng *engine.Engine) {
	m.units.Set(float64(eng.Units().Len()))
	m.activeFloor.Set(float64(eng.Floors().Active()))
	m.historyDepth.Set(float64(eng.History().Len()))
	m.gridSize.Set(float64(eng.Grid()))
	m.busPublished.Set(float64(eng.Bus().Stats().Published))
}

// Serve exposes /metrics on addr in the background.
func (m *Metrics) Serve(addr string, log Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	m.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Infof("metrics available at http://%s/metrics", addr)
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server: %v", err)
		}
	}()
}

// Close stops the server and detaches from the bus.
func (m *Metrics) Close() error {
	for _, s := range m.subs {
		s.Unsubscribe()
	}
	m.subs = nil
	if m.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.server.Shutdown(ctx)
}

// MetricsModule counts placement events and, when Addr is set, serves them
// for Prometheus. It needs PlacementModule.
type MetricsModule struct {
	Addr string
}

func (mod MetricsModule) Install(app *App, cmd *Commands) {
	eng, ok := Resource[engine.Engine](app)
	if !ok {
		panic("MetricsModule needs PlacementModule installed first")
	}
	m := NewMetrics()
	m.Observe(eng.Bus())
	if mod.Addr != "" {
		m.Serve(mod.Addr, app.Logger())
	}
	cmd.AddResources(m)

	app.UseSystem(
		System(func(m *Metrics, eng *engine.Engine) { m.Sample(eng) }).
			InStage(PostRender).
			RunAlways(),
	)
	if app.stateful {
		app.UseSystem(
			System(func(cmd *Commands, m *Metrics) {
				if err := m.Close(); err != nil {
					cmd.app.Logger().Errorf("metrics: %v", err)
				}
			}).
				InStage(Finale).
				InState(OnEnter(StateQuit)),
		)
	}
}
