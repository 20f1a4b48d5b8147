package scheduler

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/activehq/activehq/app/repository"
	"github.com/activehq/activehq/internal/pkg/clock"
	"github.com/activehq/activehq/internal/pkg/membership"
	"github.com/activehq/activehq/internal/pkg/notify"
)

// Members get their expiry reminder when coverage ends within this many
// days.
const reminderLeadDays = 3

// Scheduler runs the periodic per-gym maintenance: the expiry sweep and
// the expiry-reminder scan. The ledger operations themselves take the date
// as an argument; the scheduler is only the thing that calls them on time.
type Scheduler struct {
	gyms        repository.GymRepository
	memberships *membership.Service
	notify      *notify.Queue
	clock       clock.Clock
	interval    time.Duration

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// New creates a scheduler. The interval is how often the sweep runs; the
// sweep itself is idempotent, so a short interval only costs queries.
func New(gyms repository.GymRepository, memberships *membership.Service, notifyQueue *notify.Queue, clk clock.Clock, interval time.Duration) *Scheduler {
	if clk == nil {
		clk = clock.System()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		gyms:        gyms,
		memberships: memberships,
		notify:      notifyQueue,
		clock:       clk,
		interval:    interval,
		stopCh:      make(chan struct{}),
	}
}

// Start launches the maintenance loop. The first run happens immediately.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	s.wg.Add(1)
	go s.loop()
}

// Stop halts the loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
	s.wg.Wait()
}

func (s *Scheduler) loop() {
	defer s.wg.Done()
	log.Infof("[Scheduler] Maintenance loop running (interval=%s)", s.interval)

	s.RunOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			log.Info("[Scheduler] Maintenance loop stopping")
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce sweeps and scans every active gym for the current date.
func (s *Scheduler) RunOnce() {
	today := s.clock.Today()

	gymIDs, err := s.gyms.ListActiveIDs()
	if err != nil {
		log.Errorf("[Scheduler] Listing gyms failed: %v", err)
		return
	}

	for _, gymID := range gymIDs {
		expired, err := s.memberships.ExpireSweep(gymID, today)
		if err != nil {
			log.Errorf("[Scheduler] Expire sweep failed for gym %s: %v", gymID, err)
			continue
		}
		if expired > 0 {
			log.Infof("[Scheduler] Gym %s: %d memberships expired", gymID, expired)
		}

		if s.notify != nil {
			queued, err := s.notify.ScanExpiring(gymID, today, reminderLeadDays)
			if err != nil {
				log.Errorf("[Scheduler] Reminder scan failed for gym %s: %v", gymID, err)
				continue
			}
			if queued > 0 {
				log.Infof("[Scheduler] Gym %s: %d expiry reminders queued", gymID, queued)
			}
		}
	}
}
