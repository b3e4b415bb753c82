package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/minsu-dev/board-api/internal/models"
)

type capturingAuditRepo struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func (c *capturingAuditRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, log)
	return nil
}

func (c *capturingAuditRepo) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func TestAuditServicePersistsEntriesAsynchronously(t *testing.T) {
	repo := &capturingAuditRepo{}
	svc := NewAuditService(repo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	userID := int64(42)
	svc.Record(models.AuditLog{UserID: &userID, Action: models.AuditActionLogin, Resource: "auth"})
	svc.Record(models.AuditLog{UserID: &userID, Action: models.AuditActionLogout, Resource: "auth"})

	assert.Eventually(t, func() bool {
		return repo.count() == 2
	}, 2*time.Second, 10*time.Millisecond)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, models.AuditActionLogin, repo.entries[0].Action)
	assert.False(t, repo.entries[0].CreatedAt.IsZero())
}

func TestAuditServiceNilReceiverIsNoop(t *testing.T) {
	var svc *AuditService
	svc.Record(models.AuditLog{Action: models.AuditActionLogin})
}
