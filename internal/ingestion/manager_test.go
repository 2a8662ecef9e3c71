package ingestion

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mr1hm/go-disaster-ops/internal/config"
	"github.com/mr1hm/go-disaster-ops/internal/models"
	"github.com/mr1hm/go-disaster-ops/internal/repository"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockPredictionRepo implements repository.PredictionRepository for testing
type mockPredictionRepo struct {
	mu          sync.Mutex
	predictions map[string]*models.RiskPrediction
	addCount    atomic.Int64
}

func newMockRepo() *mockPredictionRepo {
	return &mockPredictionRepo{
		predictions: make(map[string]*models.RiskPrediction),
	}
}

func (m *mockPredictionRepo) AddPrediction(ctx context.Context, p *models.RiskPrediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions[p.ID] = p
	m.addCount.Add(1)
	return nil
}

func (m *mockPredictionRepo) GetPrediction(ctx context.Context, id string) (*models.RiskPrediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.predictions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (m *mockPredictionRepo) PredictionExists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.predictions[id]
	return exists, nil
}

func (m *mockPredictionRepo) ListActivePredictions(ctx context.Context) ([]models.RiskPrediction, error) {
	return m.ListPredictions(ctx, repository.PredictionFilter{})
}

func (m *mockPredictionRepo) ListPredictions(ctx context.Context, opts repository.PredictionFilter) ([]models.RiskPrediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var results []models.RiskPrediction
	for _, p := range m.predictions {
		results = append(results, *p)
	}
	return results, nil
}

func (m *mockPredictionRepo) UpdatePrediction(ctx context.Context, p *models.RiskPrediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.predictions[p.ID]; !ok {
		return repository.ErrNotFound
	}
	m.predictions[p.ID] = p
	return nil
}

func (m *mockPredictionRepo) DeletePrediction(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.predictions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.predictions, id)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.Event
}

func (r *recordingPublisher) Publish(e *models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingPublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type countingTrigger struct {
	n atomic.Int64
}

func (c *countingTrigger) Trigger() { c.n.Add(1) }

func testConfig(workers, buffer int) *config.Config {
	return &config.Config{
		Worker: config.WorkerConfig{
			Count:      workers,
			BufferSize: buffer,
		},
		Sources: config.SourcesConfig{
			GDACSEnabled:      false,
			GDACSPollInterval: time.Minute,
		},
	}
}

func TestManager_StartStop(t *testing.T) {
	mgr := NewManager(testConfig(2, 10), newMockRepo(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())

	// Start should not block
	mgr.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	cancel()
	mgr.Stop()
}

func TestManager_ConcurrentSubmit(t *testing.T) {
	repo := newMockRepo()
	mgr := NewManager(testConfig(4, 100), repo, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	var wg sync.WaitGroup
	numGoroutines := 10
	numPerGoroutine := 50

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(goroutineID int) {
			defer wg.Done()
			for j := 0; j < numPerGoroutine; j++ {
				mgr.pool.Submit(ctx, &models.RiskPrediction{
					ID:       fmt.Sprintf("test_%d_%d", goroutineID, j),
					Type:     "flood",
					Severity: models.SeverityMedium,
					Source:   "test",
				})
			}
		}(i)
	}

	wg.Wait()

	// Stop drains the queue before returning
	mgr.Stop()
	cancel()

	expected := numGoroutines * numPerGoroutine
	if actual := int(repo.addCount.Load()); actual != expected {
		t.Errorf("expected %d predictions added, got %d", expected, actual)
	}
}

func TestManager_SkipsKnownPredictions(t *testing.T) {
	repo := newMockRepo()
	publisher := &recordingPublisher{}
	trigger := &countingTrigger{}
	mgr := NewManager(testConfig(1, 10), repo, publisher, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)

	for i := 0; i < 3; i++ {
		mgr.pool.Submit(ctx, &models.RiskPrediction{ID: "gdacs_fl_1", Type: "flood", Source: SourceGDACS})
	}
	mgr.Stop()

	if repo.addCount.Load() != 1 {
		t.Errorf("expected 1 add, got %d", repo.addCount.Load())
	}
	if publisher.count() != 1 {
		t.Errorf("expected 1 prediction.created event, got %d", publisher.count())
	}
	if publisher.events[0].Type != models.EventPredictionCreated {
		t.Errorf("unexpected event type %s", publisher.events[0].Type)
	}
	if trigger.n.Load() != 1 {
		t.Errorf("expected 1 replan trigger, got %d", trigger.n.Load())
	}
}

func TestManager_InactivePredictionDoesNotTriggerReplan(t *testing.T) {
	trigger := &countingTrigger{}
	mgr := NewManager(testConfig(1, 10), newMockRepo(), nil, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)

	inactive := false
	mgr.pool.Submit(ctx, &models.RiskPrediction{ID: "old", IsActive: &inactive})
	mgr.Stop()

	if trigger.n.Load() != 0 {
		t.Errorf("expected no replan for inactive prediction, got %d", trigger.n.Load())
	}
}

func TestManager_PollGDACS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(gdacsFixture))
	}))
	defer srv.Close()

	repo := newMockRepo()
	mgr := NewManager(testConfig(2, 10), repo, nil, nil)
	mgr.client = &http.Client{
		Timeout:   2 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)

	mgr.poll(ctx, SourceGDACS, srv.URL)
	mgr.Stop()

	if repo.addCount.Load() != 3 {
		t.Errorf("expected 3 predictions from feed, got %d", repo.addCount.Load())
	}
	if _, err := repo.GetPrediction(ctx, "gdacs_fl_1001"); err != nil {
		t.Errorf("expected flood prediction stored: %v", err)
	}
}

func TestManager_PollFailureIsLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	repo := newMockRepo()
	mgr := NewManager(testConfig(1, 10), repo, nil, nil)
	mgr.client = &http.Client{
		Timeout:   2 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)

	mgr.poll(ctx, SourceGDACS, srv.URL)
	mgr.Stop()

	if repo.addCount.Load() != 0 {
		t.Errorf("expected nothing stored on failed poll, got %d", repo.addCount.Load())
	}
}

func TestManager_GracefulShutdown(t *testing.T) {
	mgr := NewManager(testConfig(2, 100), newMockRepo(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	for i := 0; i < 50; i++ {
		mgr.pool.Submit(ctx, &models.RiskPrediction{ID: fmt.Sprintf("shutdown_test_%d", i), Type: "flood"})
	}

	// Immediately cancel
	cancel()

	done := make(chan struct{})
	go func() {
		mgr.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("manager.Stop() timed out - possible goroutine leak")
	}
}

func TestManager_EnqueueStopsAfterCancel(t *testing.T) {
	predictions, err := parseGDACS(strings.NewReader(gdacsFixture), time.Now())
	if err != nil {
		t.Fatalf("parseGDACS failed: %v", err)
	}

	mgr := NewManager(testConfig(1, 1), newMockRepo(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)
	cancel()

	done := make(chan int, 1)
	go func() {
		done <- mgr.enqueue(ctx, predictions)
	}()

	select {
	case queued := <-done:
		if queued != 0 {
			t.Errorf("expected nothing queued after cancel, got %d", queued)
		}
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked after cancellation")
	}

	stopped := make(chan struct{})
	go func() {
		mgr.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("manager.Stop() hung after cancelled poll")
	}
}
