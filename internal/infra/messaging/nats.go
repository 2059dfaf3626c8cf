package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/config"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
	"github.com/nats-io/nats.go"
)

type NATSClient struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	cfg  config.NATS
}

func NewNATS(ctx context.Context, cfg config.NATS) (*NATSClient, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	if cfg.Stream == "" || cfg.Subject == "" {
		return nil, errors.New("nats: stream and subject are required")
	}

	conn, err := nats.Connect(cfg.URL, nats.Name("audit-trail"))
	if err != nil {
		return nil, err
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := ensureStream(ctx, js, cfg); err != nil {
		conn.Close()
		return nil, err
	}

	return &NATSClient{conn: conn, js: js, cfg: cfg}, nil
}

func (c *NATSClient) Close() {
	if c == nil || c.conn == nil {
		return
	}
	c.conn.Close()
}

// AuditEvent is the wire form of a published audit entry.
type AuditEvent struct {
	ID               int64          `json:"id"`
	Timestamp        time.Time      `json:"timestamp"`
	ActorID          *int64         `json:"actor_id"`
	Actor            string         `json:"actor"`
	Table            string         `json:"table_name"`
	ChangeType       string         `json:"change_type"`
	AffectedRecordID *int64         `json:"affected_record_id"`
	Payload          map[string]any `json:"payload"`
}

// Subject returns <subject>.<table>.<change type>, for example
// audit.conferences.create.
func Subject(base string, entry entity.AuditLog) string {
	return base + "." + entry.Table + "." + strings.ToLower(string(entry.ChangeType))
}

// MsgID is the JetStream deduplication id of an entry. Republishing after a
// crash between publish and offset save is dropped by the server.
func MsgID(entry entity.AuditLog) string {
	return "audit-" + strconv.FormatInt(entry.ID, 10)
}

func (c *NATSClient) PublishAuditEntry(ctx context.Context, entry entity.AuditLog) error {
	if c == nil {
		return nil
	}
	if c.js == nil {
		return errors.New("nats: jetstream not initialized")
	}
	data, err := json.Marshal(AuditEvent{
		ID:               entry.ID,
		Timestamp:        entry.Timestamp,
		ActorID:          entry.ActorID,
		Actor:            entry.DisplayActor(),
		Table:            entry.Table,
		ChangeType:       string(entry.ChangeType),
		AffectedRecordID: entry.AffectedRecordID,
		Payload:          entry.Payload,
	})
	if err != nil {
		return err
	}
	return c.Publish(ctx, Subject(c.cfg.Subject, entry), data, MsgID(entry))
}

func (c *NATSClient) Publish(ctx context.Context, subject string, payload []byte, msgID string) error {
	if c == nil {
		return nil
	}
	if c.js == nil {
		return errors.New("nats: jetstream not initialized")
	}
	msg := nats.NewMsg(subject)
	msg.Data = payload
	if msgID != "" {
		msg.Header.Set(nats.MsgIdHdr, msgID)
	}
	_, err := c.js.PublishMsg(msg, nats.Context(ctx))
	return err
}

func streamSubjects(cfg config.NATS) []string {
	return []string{cfg.Subject + ".>"}
}

func ensureStream(ctx context.Context, js nats.JetStreamContext, cfg config.NATS) error {
	subjects := streamSubjects(cfg)
	info, err := js.StreamInfo(cfg.Stream, nats.Context(ctx))
	if err == nil {
		if !sameSubjects(info.Config.Subjects, subjects) {
			info.Config.Subjects = subjects
			_, err = js.UpdateStream(&info.Config, nats.Context(ctx))
		}
		return err
	}

	if errors.Is(err, nats.ErrStreamNotFound) {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:      cfg.Stream,
			Subjects:  subjects,
			Storage:   nats.FileStorage,
			Retention: nats.LimitsPolicy,
		}, nats.Context(ctx))
		return err
	}
	return err
}

func sameSubjects(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, s := range a {
		seen[s]++
	}
	for _, s := range b {
		if seen[s] == 0 {
			return false
		}
		seen[s]--
	}
	for _, v := range seen {
		if v != 0 {
			return false
		}
	}
	return true
}
