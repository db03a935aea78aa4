package services

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeAuditor struct {
	mu      sync.Mutex
	entries []*models.PaymentAudit
	err     error
}

func (f *fakeAuditor) Log(_ context.Context, audit *models.PaymentAudit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, audit)
	return nil
}

func (f *fakeAuditor) events() []models.PaymentEventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.PaymentEventType, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.EventType)
	}
	return out
}
