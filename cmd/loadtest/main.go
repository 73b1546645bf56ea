// loadtest гоняет сценарии продажи через REST API терминала и печатает
// сводку по латентности и ошибкам.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultItemID = "item-1"
	codeTransport = "transport_error"
)

type loadMode string

const (
	modeCart         loadMode = "cart"
	modeCheckout     loadMode = "checkout"
	modeParkCheckout loadMode = "park-checkout"
)

type config struct {
	baseURL     string
	total       int
	totalSet    bool
	duration    time.Duration
	concurrency int
	timeout     time.Duration
	mode        loadMode
	itemID      string
	quantity    int
	payment     string
	outputPath  string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type methodReport struct {
	Calls     int64            `json:"calls"`
	Success   int64            `json:"success"`
	Failed    int64            `json:"failed"`
	ErrorRate float64          `json:"error_rate"`
	Codes     map[string]int64 `json:"codes"`
	LatencyMs latencySummary   `json:"latency_ms"`
}

type report struct {
	StartedAt         time.Time               `json:"started_at"`
	DurationSeconds   float64                 `json:"duration_seconds"`
	TotalScenarios    int64                   `json:"total_scenarios"`
	SuccessScenarios  int64                   `json:"success_scenarios"`
	FailedScenarios   int64                   `json:"failed_scenarios"`
	ErrorRate         float64                 `json:"error_rate"`
	RPS               float64                 `json:"rps"`
	ScenarioLatencyMs latencySummary          `json:"scenario_latency_ms"`
	Methods           map[string]methodReport `json:"methods"`
}

type methodStats struct {
	calls     int64
	success   int64
	failed    int64
	codes     map[string]int64
	latencies []float64
}

type collector struct {
	mu      sync.Mutex
	methods map[string]*methodStats
}

func newCollector() *collector {
	return &collector{
		methods: make(map[string]*methodStats),
	}
}

// record учитывает вызов; ok=false для транспортных и неожиданных HTTP-статусов.
func (c *collector) record(method string, latency time.Duration, code string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, found := c.methods[method]
	if !found {
		stats = &methodStats{
			codes: make(map[string]int64),
		}
		c.methods[method] = stats
	}

	stats.calls++
	if ok {
		stats.success++
	} else {
		stats.failed++
	}
	stats.codes[code]++
	stats.latencies = append(stats.latencies, float64(latency.Microseconds())/1000.0)
}

func (c *collector) buildReport(startedAt time.Time, duration time.Duration) report {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := report{
		StartedAt:       startedAt.UTC(),
		DurationSeconds: duration.Seconds(),
		Methods:         make(map[string]methodReport, len(c.methods)),
	}

	scenarioStats := c.methods["scenario"]
	if scenarioStats != nil {
		result.TotalScenarios = scenarioStats.calls
		result.SuccessScenarios = scenarioStats.success
		result.FailedScenarios = scenarioStats.failed
		result.ErrorRate = ratio(scenarioStats.failed, scenarioStats.calls)
		result.ScenarioLatencyMs = buildLatencySummary(scenarioStats.latencies)
	}
	if duration > 0 {
		result.RPS = float64(result.TotalScenarios) / duration.Seconds()
	}

	for name, stats := range c.methods {
		codesCopy := make(map[string]int64, len(stats.codes))
		for code, count := range stats.codes {
			codesCopy[code] = count
		}
		result.Methods[name] = methodReport{
			Calls:     stats.calls,
			Success:   stats.success,
			Failed:    stats.failed,
			ErrorRate: ratio(stats.failed, stats.calls),
			Codes:     codesCopy,
			LatencyMs: buildLatencySummary(stats.latencies),
		}
	}

	return result
}

func parseConfig() (config, error) {
	var cfg config
	var modeValue string
	var timeoutValue string
	var durationValue string

	flag.StringVar(&cfg.baseURL, "base-url", "http://localhost:8080", "POS REST API base URL")
	flag.IntVar(&cfg.total, "total", 400, "total scenarios to execute in count mode; in duration mode only used when explicitly set")
	flag.StringVar(&durationValue, "duration", "0s", "optional time-based run duration (e.g. 10m, 15m)")
	flag.IntVar(&cfg.concurrency, "concurrency", 40, "number of concurrent workers")
	flag.StringVar(&timeoutValue, "timeout", "5s", "per-request timeout")
	flag.StringVar(&modeValue, "mode", string(modeCheckout), "load mode: cart | checkout | park-checkout")
	flag.StringVar(&cfg.itemID, "item-id", defaultItemID, "catalog item to add to the cart")
	flag.IntVar(&cfg.quantity, "quantity", 1, "item quantity per scenario")
	flag.StringVar(&cfg.payment, "payment", "cash", "payment method for checkout")
	flag.StringVar(&cfg.outputPath, "output", "", "optional JSON report output file path")
	flag.Parse()

	timeout, err := time.ParseDuration(strings.TrimSpace(timeoutValue))
	if err != nil {
		return cfg, fmt.Errorf("parse timeout: %w", err)
	}
	cfg.timeout = timeout

	duration, err := time.ParseDuration(strings.TrimSpace(durationValue))
	if err != nil {
		return cfg, fmt.Errorf("parse duration: %w", err)
	}
	cfg.duration = duration

	flag.CommandLine.Visit(func(f *flag.Flag) {
		if f.Name == "total" {
			cfg.totalSet = true
		}
	})

	mode, err := parseMode(modeValue)
	if err != nil {
		return cfg, err
	}
	cfg.mode = mode

	if strings.TrimSpace(cfg.baseURL) == "" {
		return cfg, errors.New("base-url is required")
	}
	cfg.baseURL = strings.TrimRight(cfg.baseURL, "/")
	if cfg.duration < 0 {
		return cfg, errors.New("duration must be >= 0")
	}
	if cfg.duration == 0 && cfg.total <= 0 {
		return cfg, errors.New("total must be > 0 when duration is not set")
	}
	if cfg.duration > 0 && cfg.totalSet && cfg.total <= 0 {
		return cfg, errors.New("total must be > 0 when explicitly set with duration")
	}
	if cfg.concurrency <= 0 {
		return cfg, errors.New("concurrency must be > 0")
	}
	if cfg.timeout <= 0 {
		return cfg, errors.New("timeout must be > 0")
	}
	if strings.TrimSpace(cfg.itemID) == "" {
		return cfg, errors.New("item-id is required")
	}
	if cfg.quantity <= 0 {
		return cfg, errors.New("quantity must be > 0")
	}
	if strings.TrimSpace(cfg.payment) == "" {
		return cfg, errors.New("payment is required")
	}

	return cfg, nil
}

func parseMode(value string) (loadMode, error) {
	switch loadMode(strings.TrimSpace(value)) {
	case modeCart:
		return modeCart, nil
	case modeCheckout:
		return modeCheckout, nil
	case modeParkCheckout:
		return modeParkCheckout, nil
	default:
		return "", fmt.Errorf("unsupported mode: %s", value)
	}
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: cfg.timeout}
	tester := newAPITester(client, cfg.baseURL)

	startedAt := time.Now()
	col := newCollector()

	jobs := make(chan int, cfg.concurrency*2)
	var failures int64
	var wg sync.WaitGroup

	for workerID := 0; workerID < cfg.concurrency; workerID++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				if runErr := runScenario(tester, cfg, id, col); runErr != nil {
					atomic.AddInt64(&failures, 1)
				}
			}
		}()
	}

	dispatchJobs(jobs, cfg)
	wg.Wait()

	duration := time.Since(startedAt)
	result := col.buildReport(startedAt, duration)
	if result.FailedScenarios == 0 && failures > 0 {
		result.FailedScenarios = failures
		result.ErrorRate = ratio(result.FailedScenarios, result.TotalScenarios)
	}

	printReport(result, cfg)
	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
			os.Exit(1)
		}
	}

	if result.FailedScenarios > 0 {
		os.Exit(1)
	}
}

func dispatchJobs(jobs chan<- int, cfg config) {
	defer close(jobs)

	if cfg.duration <= 0 {
		for i := 0; i < cfg.total; i++ {
			jobs <- i
		}
		return
	}

	timer := time.NewTimer(cfg.duration)
	defer timer.Stop()

	for i := 0; ; i++ {
		if cfg.totalSet && i >= cfg.total {
			return
		}

		select {
		case <-timer.C:
			return
		case jobs <- i:
		}
	}
}

// runScenario проходит путь кассира: открыть сессию, набрать корзину и,
// смотря по режиму, оформить продажу напрямую или через парковку.
func runScenario(tester *apiTester, cfg config, index int, col *collector) error {
	scenarioStart := time.Now()
	scenarioOK := true
	defer func() {
		code := "ok"
		if !scenarioOK {
			code = "failed"
		}
		col.record("scenario", time.Since(scenarioStart), code, scenarioOK)
	}()

	sessionID, err := tester.createSession(col)
	if err != nil {
		scenarioOK = false
		return err
	}
	defer tester.closeSession(sessionID)

	for i := 0; i < cfg.quantity; i++ {
		if err := tester.addItem(sessionID, cfg.itemID, col); err != nil {
			scenarioOK = false
			return err
		}
	}

	if cfg.mode == modeCart {
		return nil
	}

	if cfg.mode == modeParkCheckout {
		draftID, parkErr := tester.parkCart(sessionID, fmt.Sprintf("load-%d", index), col)
		if parkErr != nil {
			scenarioOK = false
			return parkErr
		}
		if resumeErr := tester.resumeDraft(draftID, sessionID, col); resumeErr != nil {
			scenarioOK = false
			return resumeErr
		}
	}

	if err := tester.checkout(sessionID, cfg.payment, col); err != nil {
		scenarioOK = false
		return err
	}

	return nil
}

type apiTester struct {
	client  *http.Client
	baseURL string
}

func newAPITester(client *http.Client, baseURL string) *apiTester {
	return &apiTester{client: client, baseURL: baseURL}
}

func (t *apiTester) createSession(col *collector) (string, error) {
	var resp struct {
		SessionID string `json:"session_id"`
	}
	if err := t.call(col, "CreateSession", http.MethodPost, "/api/v1/sessions", nil, http.StatusCreated, &resp); err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", errors.New("create session returned empty id")
	}
	return resp.SessionID, nil
}

func (t *apiTester) closeSession(sessionID string) {
	req, err := http.NewRequest(http.MethodDelete, t.baseURL+"/api/v1/sessions/"+sessionID, nil)
	if err != nil {
		return
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return
	}
	_ = resp.Body.Close()
}

func (t *apiTester) addItem(sessionID, itemID string, col *collector) error {
	body := map[string]string{"item_id": itemID}
	path := "/api/v1/sessions/" + sessionID + "/cart/items"
	return t.call(col, "AddItem", http.MethodPost, path, body, http.StatusOK, nil)
}

func (t *apiTester) parkCart(sessionID, label string, col *collector) (string, error) {
	var draft struct {
		ID string `json:"id"`
	}
	body := map[string]string{"label": label}
	path := "/api/v1/sessions/" + sessionID + "/park"
	if err := t.call(col, "ParkDraft", http.MethodPost, path, body, http.StatusCreated, &draft); err != nil {
		return "", err
	}
	if draft.ID == "" {
		return "", errors.New("park returned empty draft id")
	}
	return draft.ID, nil
}

func (t *apiTester) resumeDraft(draftID, sessionID string, col *collector) error {
	body := map[string]string{"session_id": sessionID}
	path := "/api/v1/drafts/" + draftID + "/resume"
	return t.call(col, "ResumeDraft", http.MethodPost, path, body, http.StatusOK, nil)
}

func (t *apiTester) checkout(sessionID, payment string, col *collector) error {
	body := map[string]string{"payment_method": payment}
	path := "/api/v1/sessions/" + sessionID + "/checkout"
	return t.call(col, "Checkout", http.MethodPost, path, body, http.StatusCreated, nil)
}

func (t *apiTester) call(col *collector, name, method, path string, body any, wantStatus int, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, t.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := t.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		col.record(name, latency, codeTransport, false)
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	ok := resp.StatusCode == wantStatus
	col.record(name, latency, strconv.Itoa(resp.StatusCode), ok)
	if !ok {
		return fmt.Errorf("%s: unexpected status %d", name, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: decode response: %w", name, err)
		}
	}
	return nil
}

func writeJSONReport(path string, result report) error {
	cleanPath := filepath.Clean(path)
	if cleanPath == "." || cleanPath == string(filepath.Separator) {
		return errors.New("output path must point to a file")
	}
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output path must be inside current directory: %s", path)
	}

	// #nosec G304 -- path is an explicit CLI output parameter for local load-test reports.
	file, err := os.Create(cleanPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func printReport(result report, cfg config) {
	fmt.Println("Load test summary")
	fmt.Printf("mode=%s run=%s total=%d success=%d failed=%d error_rate=%.4f\n",
		cfg.mode,
		runTarget(cfg),
		result.TotalScenarios,
		result.SuccessScenarios,
		result.FailedScenarios,
		result.ErrorRate,
	)
	fmt.Printf("duration=%.2fs rps=%.2f\n", result.DurationSeconds, result.RPS)
	fmt.Printf("scenario latency ms: min=%.2f avg=%.2f p50=%.2f p95=%.2f p99=%.2f max=%.2f\n",
		result.ScenarioLatencyMs.Min,
		result.ScenarioLatencyMs.Avg,
		result.ScenarioLatencyMs.P50,
		result.ScenarioLatencyMs.P95,
		result.ScenarioLatencyMs.P99,
		result.ScenarioLatencyMs.Max,
	)

	methodNames := make([]string, 0, len(result.Methods))
	for name := range result.Methods {
		if name == "scenario" {
			continue
		}
		methodNames = append(methodNames, name)
	}
	sort.Strings(methodNames)
	for _, name := range methodNames {
		stats := result.Methods[name]
		fmt.Printf(
			"%s: calls=%d success=%d failed=%d error_rate=%.4f p95=%.2fms\n",
			name,
			stats.Calls,
			stats.Success,
			stats.Failed,
			stats.ErrorRate,
			stats.LatencyMs.P95,
		)
	}
}

func runTarget(cfg config) string {
	if cfg.duration <= 0 {
		return fmt.Sprintf("count:%d", cfg.total)
	}
	if cfg.totalSet {
		return fmt.Sprintf("duration:%s,max-total:%d", cfg.duration, cfg.total)
	}
	return fmt.Sprintf("duration:%s", cfg.duration)
}

func buildLatencySummary(values []float64) latencySummary {
	if len(values) == 0 {
		return latencySummary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, value := range sorted {
		sum += value
	}

	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

func ratio(failed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(failed) / float64(total)
}
