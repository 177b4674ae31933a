// internal/mediation/dashboard.go
package mediation

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Metric is one dashboard card. Cards without an Endpoint have no backing API.
type Metric struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Endpoint string `json:"endpoint,omitempty"`
}

// CardData is the payload of a card-view endpoint.
type CardData struct {
	DailyCount      int64  `json:"daily_count"`
	ThirtyDayCount  int64  `json:"30day_count"`
	NinetyDayCount  int64  `json:"90day_count"`
	DataRetrievedAt string `json:"data_retrieved_at"`
}

// DefaultMetrics is the card layout of the CVM dashboard.
var DefaultMetrics = []Metric{
	{Title: "Active Total", Slug: "active-total", Endpoint: "/api/active-users/card-view"},
	{Title: "Active New", Slug: "active-new", Endpoint: "/api/new-customers/card-view"},
	{Title: "Active Existing", Slug: "active-existing", Endpoint: "/api/active-existing/card-view"},
	{Title: "Active Total Transacting", Slug: "active-total-transacting"},
	{Title: "Active Existing Transacting", Slug: "active-existing-transacting"},
	{Title: "Active New Transacting", Slug: "active-new-transacting"},
	{Title: "Active Micro Merchants", Slug: "active-micro-merchants"},
	{Title: "Active Unified Merchants", Slug: "active-unified-merchants"},
	{Title: "Active App Users", Slug: "active-app-users"},
	{Title: "App Downloads", Slug: "app-downloads"},
	{Title: "Non-Gross Adds", Slug: "non-gross-adds"},
	{Title: "Gross Adds", Slug: "gross-adds"},
}

// Cards is the result of one dashboard refresh. Data holds only the metrics
// whose endpoint answered; Failed lists the slugs that did not.
type Cards struct {
	Metrics []Metric            `json:"metrics"`
	Data    map[string]CardData `json:"data"`
	Failed  []string            `json:"failed"`
}

// DashboardClient fetches metric cards from the analytics backend.
type DashboardClient struct {
	baseURL     string
	metrics     []Metric
	concurrency int
	HTTPClient  *http.Client
}

// NewDashboardClient uses DefaultMetrics when metrics is nil.
func NewDashboardClient(baseURL string, metrics []Metric) *DashboardClient {
	if metrics == nil {
		metrics = DefaultMetrics
	}
	return &DashboardClient{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		metrics:     metrics,
		concurrency: 4,
		HTTPClient:  &http.Client{Timeout: 5 * time.Second},
	}
}

// FetchCards queries every metric with an endpoint concurrently. A failing
// metric is logged and left out; the call itself fails only when ctx is done.
func (d *DashboardClient) FetchCards(ctx context.Context) (*Cards, error) {
	cards := &Cards{
		Metrics: d.metrics,
		Data:    make(map[string]CardData),
		Failed:  []string{},
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for _, m := range d.metrics {
		if m.Endpoint == "" {
			continue
		}
		g.Go(func() error {
			var data CardData
			err := doJSON(gctx, d.HTTPClient, http.MethodGet, d.baseURL+m.Endpoint, m.Endpoint, nil, &data)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				customLog.Warnf("Dashboard: failed to fetch %s: %v", m.Title, err)
				cards.Failed = append(cards.Failed, m.Slug)
				return nil
			}
			cards.Data[m.Slug] = data
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(cards.Failed) > 0 {
		slices.Sort(cards.Failed)
		customLog.Warnf("Dashboard: %d metric(s) failed to refresh", len(cards.Failed))
	}
	return cards, nil
}
