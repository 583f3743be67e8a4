package services

import (
	"context"
	"log"
	"time"

	"transporteuni-api/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs scheduled maintenance jobs
type CronService struct {
	cron             *cron.Cron
	refreshTokenRepo repositories.RefreshTokenRepository
	cleanupSpec      string
}

// NewCronService creates a new cron service
func NewCronService(refreshTokenRepo repositories.RefreshTokenRepository, cleanupSpec string) *CronService {
	return &CronService{
		cron:             cron.New(),
		refreshTokenRepo: refreshTokenRepo,
		cleanupSpec:      cleanupSpec,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.cleanupSpec, s.CleanupRefreshTokens); err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("🚀 CronService started [token cleanup: %s]", s.cleanupSpec)
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 CronService stopped")
}

// CleanupRefreshTokens deletes expired and revoked refresh tokens
func (s *CronService) CleanupRefreshTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.refreshTokenRepo.DeleteStale(ctx, time.Now())
	if err != nil {
		log.Printf("❌ Refresh token cleanup failed: %v", err)
		return
	}

	if deleted > 0 {
		log.Printf("✅ Refresh token cleanup: %d tokens deleted", deleted)
	}
}
