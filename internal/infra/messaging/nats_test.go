package messaging

import (
	"context"
	"testing"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/config"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectAndMsgID(t *testing.T) {
	entry := entity.AuditLog{ID: 17, Table: "job_postings", ChangeType: entity.ChangeUpdate}
	assert.Equal(t, "audit.job_postings.update", Subject("audit", entry))
	assert.Equal(t, "audit-17", MsgID(entry))
}

func TestStreamSubjectsCoverEveryTable(t *testing.T) {
	assert.Equal(t, []string{"audit.>"}, streamSubjects(config.NATS{Subject: "audit"}))
}

func TestSameSubjects(t *testing.T) {
	assert.True(t, sameSubjects([]string{"a", "b"}, []string{"b", "a"}))
	assert.False(t, sameSubjects([]string{"a", "a"}, []string{"a", "b"}))
	assert.False(t, sameSubjects([]string{"a"}, []string{"a", "b"}))
}

func TestNewNATSDisabledWithoutURL(t *testing.T) {
	client, err := NewNATS(context.Background(), config.NATS{})
	require.NoError(t, err)
	assert.Nil(t, client)

	// A nil client is a no-op publisher.
	assert.NoError(t, client.PublishAuditEntry(context.Background(), entity.AuditLog{ID: 1}))
}

func TestNewNATSRequiresStream(t *testing.T) {
	_, err := NewNATS(context.Background(), config.NATS{URL: "nats://127.0.0.1:4222"})
	assert.Error(t, err)
}
