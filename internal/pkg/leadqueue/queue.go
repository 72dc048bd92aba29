package leadqueue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/RodrigoFalk/LinkPulse/app/models"
	"github.com/RodrigoFalk/LinkPulse/app/repository"
	"github.com/RodrigoFalk/LinkPulse/internal/pkg/cache"
)

const (
	// Redis key for the pending-lead list
	LeadQueueKey = "lead_queue"

	popTimeout = 2 * time.Second
)

// Queue moves CRM lead upserts off the webhook request path. Leads are
// pushed onto a Redis list and drained by background workers; when Redis
// is unavailable the upsert runs inline instead. Either way a failure is
// logged and dropped, never surfaced to the webhook sender.
type Queue struct {
	client  *redis.Client
	leads   repository.LeadRepository
	workers int
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewQueue creates a lead queue backed by the shared Redis client.
func NewQueue(leads repository.LeadRepository, workers int) *Queue {
	if workers <= 0 {
		workers = 2
	}
	return &Queue{
		client:  cache.GetClient(),
		leads:   leads,
		workers: workers,
		stopCh:  make(chan struct{}),
	}
}

// Start starts the queue workers.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running || q.client == nil {
		return
	}

	q.running = true
	log.Infof("[LeadQueue] Starting %d workers", q.workers)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop stops the queue workers and waits for them to drain.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return
	}

	log.Info("[LeadQueue] Stopping workers...")
	close(q.stopCh)
	q.running = false
	q.wg.Wait()
	log.Info("[LeadQueue] All workers stopped")
}

// Enqueue pushes the lead onto the Redis list, or upserts inline when the
// queue is not running. Best-effort: errors are logged and swallowed.
func (q *Queue) Enqueue(lead *models.Lead) {
	if lead == nil || lead.Email == "" {
		return
	}

	q.mu.Lock()
	running := q.running
	q.mu.Unlock()

	if !running || q.client == nil {
		q.upsert(lead)
		return
	}

	data, err := json.Marshal(lead)
	if err != nil {
		log.Errorf("[LeadQueue] Failed to marshal lead %s: %v", lead.Email, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := q.client.LPush(ctx, LeadQueueKey, data).Err(); err != nil {
		log.Errorf("[LeadQueue] Push failed, upserting inline: %v", err)
		q.upsert(lead)
	}
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	log.Debugf("[LeadQueue] Worker %d started", id)

	ctx := context.Background()
	for {
		select {
		case <-q.stopCh:
			log.Debugf("[LeadQueue] Worker %d stopping", id)
			return
		default:
		}

		result, err := q.client.BRPop(ctx, popTimeout, LeadQueueKey).Result()
		if err != nil {
			if err != redis.Nil {
				log.Errorf("[LeadQueue] Worker %d pop error: %v", id, err)
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		var lead models.Lead
		if err := json.Unmarshal([]byte(result[1]), &lead); err != nil {
			log.Errorf("[LeadQueue] Worker %d bad payload: %v", id, err)
			continue
		}
		q.upsert(&lead)
	}
}

func (q *Queue) upsert(lead *models.Lead) {
	if q.leads == nil {
		return
	}
	if err := q.leads.Upsert(lead); err != nil {
		log.Errorf("[LeadQueue] Upsert failed for %s: %v", lead.Email, err)
	}
}
