package notify

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/activehq/activehq/app/models"
	"github.com/activehq/activehq/app/repository"
	"github.com/activehq/activehq/internal/pkg/cache"
	"github.com/activehq/activehq/internal/pkg/mail"
)

const (
	// Redis keys for the delivery queue
	QueueKey      = "notify_queue"
	ProcessingKey = "notify_processing"
)

// Queue delivers queued notifications in the background. Notification rows
// are the source of truth; Redis only carries ids, so a lost queue entry is
// recovered by re-enqueueing pending rows.
type Queue struct {
	client  *redis.Client
	repos   *repository.Repositories
	workers int
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewQueue creates a delivery queue over the shared Redis client.
func NewQueue(repos *repository.Repositories, workers int) *Queue {
	if workers <= 0 {
		workers = 2
	}
	return &Queue{
		client:  cache.GetClient(),
		repos:   repos,
		workers: workers,
		stopCh:  make(chan struct{}),
	}
}

// Start starts the delivery workers.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}
	q.running = true
	log.Infof("[Notify] Starting %d delivery workers", q.workers)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop stops the delivery workers and waits for them to drain.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return
	}
	log.Info("[Notify] Stopping delivery workers...")
	close(q.stopCh)
	q.running = false
	q.wg.Wait()
	log.Info("[Notify] All delivery workers stopped")
}

// Enqueue pushes a notification id onto the delivery queue.
func (q *Queue) Enqueue(notificationID string) error {
	return q.client.LPush(context.Background(), QueueKey, notificationID).Err()
}

// RequeuePending re-enqueues pending rows that never reached Redis, e.g.
// after a restart. Called on startup before the workers begin.
func (q *Queue) RequeuePending(limit int) (int, error) {
	pending, err := q.repos.Notification.ListPending(limit)
	if err != nil {
		return 0, err
	}
	for _, n := range pending {
		if err := q.Enqueue(n.ID); err != nil {
			return 0, err
		}
	}
	return len(pending), nil
}

// worker drains the queue one notification at a time.
func (q *Queue) worker(id int) {
	defer q.wg.Done()
	log.Infof("[Notify] Worker %d started", id)

	ctx := context.Background()
	for {
		select {
		case <-q.stopCh:
			log.Infof("[Notify] Worker %d stopping", id)
			return
		default:
			notificationID, err := q.client.BRPopLPush(ctx, QueueKey, ProcessingKey, time.Second).Result()
			if err != nil {
				if err != redis.Nil {
					log.Errorf("[Notify] Worker %d: dequeue error: %v", id, err)
					time.Sleep(time.Second)
				}
				continue
			}

			q.deliver(notificationID)
			q.client.LRem(ctx, ProcessingKey, 1, notificationID)
		}
	}
}

// deliver sends one notification and flips its row to sent or failed.
func (q *Queue) deliver(notificationID string) {
	n, err := q.repos.Notification.FindByID(notificationID)
	if err != nil {
		log.Errorf("[Notify] Load failed for %s: %v", notificationID, err)
		return
	}
	if n.Status != models.NotificationStatusPending {
		// Another worker already handled it.
		return
	}

	if err := q.send(n); err != nil {
		log.Errorf("[Notify] Delivery failed for %s: %v", n.ID, err)
		if err := q.repos.Notification.MarkFailed(n.ID, err.Error()); err != nil {
			log.Errorf("[Notify] MarkFailed error for %s: %v", n.ID, err)
		}
		return
	}

	if err := q.repos.Notification.MarkSent(n.ID, time.Now().UTC()); err != nil {
		log.Errorf("[Notify] MarkSent error for %s: %v", n.ID, err)
	}
}

// send routes the notification to its channel.
func (q *Queue) send(n *models.Notification) error {
	switch n.Channel {
	case models.NotificationChannelEmail:
		member, err := q.repos.Member.GetByID(n.GymID, n.MemberID)
		if err != nil {
			return err
		}
		if member.Email == "" {
			return ErrNoRecipientAddress
		}
		return mail.SendMail(member.Email, n.Subject, n.Body)
	default:
		// WhatsApp and SMS delivery go through providers that are wired
		// per deployment; log-only until then.
		log.Infof("[Notify] [%s] to member %s: %s", n.Channel, n.MemberID, n.Subject)
		return nil
	}
}
