package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	lockoutMaxAttempts = 5
	lockoutWindow      = 15 * time.Minute
	lockoutDuration    = 5 * time.Minute
	lockoutCleanup     = 60 * time.Second
	lockoutMaxRecords  = 10000
)

type lockoutRecord struct {
	attempts  int
	firstFail time.Time
	lockedAt  time.Time
}

// FailureLockout tracks failed shared-secret presentations per client IP and
// blocks IPs that exceed the failure threshold within the tracking window.
// Auth here is against static secrets, so the client address is the only
// useful tracking dimension.
type FailureLockout struct {
	mu      sync.Mutex
	records map[string]*lockoutRecord
	log     *logrus.Logger
}

// NewFailureLockout creates a lockout tracker and starts a cleanup goroutine
// that stops when ctx is cancelled.
func NewFailureLockout(ctx context.Context, log *logrus.Logger) *FailureLockout {
	l := &FailureLockout{
		records: make(map[string]*lockoutRecord),
		log:     log,
	}
	go l.cleanupLoop(ctx)

	return l
}

// IsBlocked reports whether the client IP is currently locked out.
func (l *FailureLockout) IsBlocked(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[clientIP]
	if !ok {
		return false
	}

	return !rec.lockedAt.IsZero() && time.Since(rec.lockedAt) < lockoutDuration
}

// RecordFailure records a failed authentication attempt from the client IP.
func (l *FailureLockout) RecordFailure(clientIP string) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[clientIP]
	if !ok {
		if len(l.records) >= lockoutMaxRecords {
			// Table full; the per-IP rate limiter still applies.
			return
		}
		l.records[clientIP] = &lockoutRecord{attempts: 1, firstFail: now}

		return
	}

	if now.Sub(rec.firstFail) > lockoutWindow {
		rec.attempts = 1
		rec.firstFail = now
		rec.lockedAt = time.Time{}

		return
	}

	rec.attempts++
	if rec.attempts >= lockoutMaxAttempts {
		rec.lockedAt = now
		l.log.WithField("client_ip", clientIP).Warn("client locked out after repeated auth failures")
	}
}

// Reset clears failure tracking for an IP (call on successful auth).
func (l *FailureLockout) Reset(clientIP string) {
	l.mu.Lock()
	delete(l.records, clientIP)
	l.mu.Unlock()
}

func (l *FailureLockout) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(lockoutCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			l.mu.Lock()
			for ip, rec := range l.records {
				expired := !rec.lockedAt.IsZero() && now.Sub(rec.lockedAt) >= lockoutDuration
				stale := now.Sub(rec.firstFail) >= lockoutWindow
				if expired || stale {
					delete(l.records, ip)
				}
			}
			l.mu.Unlock()
		}
	}
}
