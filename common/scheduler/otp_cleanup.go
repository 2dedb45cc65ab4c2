package scheduler

import (
	"context"
	"log"
	"time"
)

// ExpiredSweeper deletes rows whose expiry is before now
type ExpiredSweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// OtpCleanupScheduler periodically removes expired OTP rows. Expired
// codes are already unusable; the sweep only keeps the table small.
type OtpCleanupScheduler struct {
	repo     ExpiredSweeper
	interval time.Duration
	stopChan chan bool
}

// NewOtpCleanupScheduler creates a new scheduler
func NewOtpCleanupScheduler(repo ExpiredSweeper, intervalMinutes int) *OtpCleanupScheduler {
	return &OtpCleanupScheduler{
		repo:     repo,
		interval: time.Duration(intervalMinutes) * time.Minute,
		stopChan: make(chan bool),
	}
}

// Start begins the scheduled sweep job
func (s *OtpCleanupScheduler) Start() {
	log.Printf("[SCHEDULER] OTP cleanup job started (runs every %v)", s.interval)

	// Run immediately once at startup
	s.sweep()

	// Then run periodically
	ticker := time.NewTicker(s.interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopChan:
				ticker.Stop()
				log.Println("[SCHEDULER] OTP cleanup job stopped")
				return
			}
		}
	}()
}

// Stop stops the scheduler
func (s *OtpCleanupScheduler) Stop() {
	s.stopChan <- true
}

func (s *OtpCleanupScheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.repo.SweepExpired(ctx, time.Now())
	if err != nil {
		log.Printf("[SCHEDULER] Error sweeping expired OTPs: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("[SCHEDULER] Removed %d expired OTP(s)", removed)
	}
}
