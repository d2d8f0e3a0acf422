package producer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/sunscout/sunscout/internal/config"
	"github.com/sunscout/sunscout/internal/feasibility"
)

// Design sizing assumptions, carried over from the original yield model.
const (
	panelWatts         = 410.0 // typical modern module wattage
	performanceRatio   = 0.8   // system losses
	packingFactor      = 0.6   // portion of roof usable for panels
	moduleAreaM2       = 2.0   // approximate footprint per module
	defaultRoofAreaM2  = 80.0
	metricsFetchExpiry = 10 * time.Second
)

// irradianceSource resolves annual GHI (kWh/m²/yr) for a jurisdiction.
type irradianceSource interface {
	ghi(ctx context.Context, req feasibility.Request) (float64, error)
}

// designProducer scores the design dimension: it sizes a rooftop system from
// the roof area and local irradiance, then scores capacity on a 10-points-per-kW
// scale capped at 100.
type designProducer struct {
	source   irradianceSource
	roofArea float64
}

func newDesignProducer(spec config.ProducerSpec) (*designProducer, error) {
	roof := spec.RoofAreaM2
	if roof <= 0 {
		roof = defaultRoofAreaM2
	}

	var src irradianceSource
	switch spec.Irradiance.Source {
	case "file":
		fs, err := newFileIrradiance(spec.Irradiance.Path)
		if err != nil {
			return nil, err
		}
		src = fs
	case "metrics":
		metric := spec.Irradiance.Metric
		if metric == "" {
			metric = config.DefaultGHIMetric
		}
		src = &metricsIrradiance{
			endpoint: spec.Irradiance.Endpoint,
			metric:   metric,
			client:   &http.Client{Timeout: metricsFetchExpiry},
		}
	default:
		return nil, fmt.Errorf("design producer: unsupported irradiance source %q", spec.Irradiance.Source)
	}

	return &designProducer{source: src, roofArea: roof}, nil
}

func (p *designProducer) Analyze(ctx context.Context, req feasibility.Request) (*Analysis, error) {
	ghi, err := p.source.ghi(ctx, req)
	if err != nil {
		return nil, err
	}

	modules := math.Floor(p.roofArea * packingFactor / moduleAreaM2)
	dcKW := round2(modules * panelWatts / 1000)
	annualKWh := math.Round(dcKW * ghi * performanceRatio)

	score := dcKW * 10
	if score > feasibility.SubScoreMax {
		score = feasibility.SubScoreMax
	}

	inverterKW := round1(dcKW * 0.83)
	notes := []string{
		fmt.Sprintf("estimated %.2f kW system producing %.0f kWh/yr (GHI %.0f kWh/m²/yr)", dcKW, annualKWh, ghi),
		fmt.Sprintf("bill of materials: %.0f× %.0fW panels, %.1f kW inverter, mounting kit", modules, panelWatts, inverterKW),
		fmt.Sprintf("assumptions: %.0f m² roof, packing factor %.1f, performance ratio %.1f", p.roofArea, packingFactor, performanceRatio),
	}

	return &Analysis{SubScore: score, Notes: notes}, nil
}

// --- file source --------------------------------------------------------------

// fileIrradiance serves GHI lookups from a CSV dataset with columns
// city,state,ghi_kwh_m2_yr. Keys are matched case-insensitively.
type fileIrradiance struct {
	ghiByPlace map[string]float64
}

func newFileIrradiance(path string) (*fileIrradiance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("design producer: open irradiance data: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("design producer: read irradiance header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"city", "state", "ghi_kwh_m2_yr"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("design producer: irradiance data missing column %q", required)
		}
	}

	out := &fileIrradiance{ghiByPlace: make(map[string]float64)}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("design producer: read irradiance row: %w", err)
		}
		ghi, err := strconv.ParseFloat(strings.TrimSpace(rec[col["ghi_kwh_m2_yr"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("design producer: bad ghi value %q: %w", rec[col["ghi_kwh_m2_yr"]], err)
		}
		out.ghiByPlace[placeKey(rec[col["city"]], rec[col["state"]])] = ghi
	}
	if len(out.ghiByPlace) == 0 {
		return nil, fmt.Errorf("design producer: irradiance dataset %q has no rows", path)
	}
	return out, nil
}

func (f *fileIrradiance) ghi(ctx context.Context, req feasibility.Request) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v, ok := f.ghiByPlace[placeKey(req.City, req.State)]
	if !ok {
		return 0, fmt.Errorf("no irradiance data for %s", req.Jurisdiction())
	}
	return v, nil
}

func placeKey(city, state string) string {
	return strings.ToLower(strings.TrimSpace(city)) + "|" + strings.ToLower(strings.TrimSpace(state))
}

// --- metrics source -----------------------------------------------------------

// metricsIrradiance fetches GHI from a weather-station endpoint exposing
// Prometheus text format: a gauge named metric with city and state labels.
type metricsIrradiance struct {
	endpoint string
	metric   string
	client   *http.Client
}

func (m *metricsIrradiance) ghi(ctx context.Context, req feasibility.Request) (float64, error) {
	mfs, err := fetchMetricFamilies(ctx, m.client, m.endpoint)
	if err != nil {
		return 0, fmt.Errorf("fetch irradiance metrics: %w", err)
	}

	mf, ok := mfs[m.metric]
	if !ok {
		return 0, fmt.Errorf("metric %q not exposed by %s", m.metric, m.endpoint)
	}

	for _, sample := range mf.GetMetric() {
		if !labelsMatch(sample, req.City, req.State) {
			continue
		}
		switch {
		case sample.Gauge != nil:
			return sample.Gauge.GetValue(), nil
		case sample.Untyped != nil:
			return sample.Untyped.GetValue(), nil
		}
	}
	return 0, fmt.Errorf("no irradiance data for %s", req.Jurisdiction())
}

// labelsMatch reports whether a metric sample carries city/state labels for
// the requested jurisdiction, compared case-insensitively.
func labelsMatch(m *dto.Metric, city, state string) bool {
	var gotCity, gotState string
	for _, l := range m.GetLabel() {
		switch l.GetName() {
		case "city":
			gotCity = l.GetValue()
		case "state":
			gotState = l.GetValue()
		}
	}
	return strings.EqualFold(gotCity, city) && strings.EqualFold(gotState, state)
}

// fetchMetricFamilies performs an HTTP GET to url and returns parsed metric families.
func fetchMetricFamilies(ctx context.Context, client *http.Client, url string) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse prometheus text: %w", err)
	}
	// Non-empty result with a non-nil err means partial parse. Treat as success.
	return mfs, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
