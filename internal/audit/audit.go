// Package audit records gateway and key-management activity in the database.
//
// Every terminal connect, command execution, disconnect, and key generation
// produces one AuditLog row plus a log line. Retention is enforced by Prune,
// scheduled from main.
package audit

import (
	"log"
	"time"

	"github.com/termgate/termgate/internal/database"
	"github.com/termgate/termgate/internal/logutil"
	"gorm.io/gorm"
)

// Event types recorded by the gateway and the key service.
const (
	EventSessionConnected    = "session_connected"
	EventCommandExecuted     = "command_executed"
	EventCommandFailed       = "command_failed"
	EventSessionDisconnected = "session_disconnected"
	EventKeyGenerated        = "key_generated"
)

// DefaultRetentionDays is used when the configured retention is zero.
const DefaultRetentionDays = 90

// Entry contains the fields needed to create one audit record.
type Entry struct {
	SessionID string
	ServerID  uint
	EventType string
	Actor     string
	SourceIP  string
	Details   string
}

// Auditor writes audit records to the database and mirrors them to the log.
type Auditor struct {
	db            *gorm.DB
	retentionDays int
	nowFn         func() time.Time // injectable clock for testing
}

// NewAuditor creates an Auditor writing to the given database.
func NewAuditor(db *gorm.DB, retentionDays int) *Auditor {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return &Auditor{
		db:            db,
		retentionDays: retentionDays,
		nowFn:         time.Now,
	}
}

// Record writes one audit event. Failures are logged, not propagated: an
// audit write must never fail the operation it describes.
func (a *Auditor) Record(entry Entry) {
	if a == nil {
		return
	}
	record := database.AuditLog{
		SessionID: entry.SessionID,
		ServerID:  entry.ServerID,
		EventType: entry.EventType,
		Actor:     entry.Actor,
		SourceIP:  entry.SourceIP,
		Details:   logutil.SanitizeForLog(entry.Details),
	}
	if err := a.db.Create(&record).Error; err != nil {
		log.Printf("[audit] failed to write audit log: %v", err)
		return
	}
	log.Printf("[audit] %s session=%s server=%d actor=%s details=%s",
		entry.EventType,
		entry.SessionID,
		entry.ServerID,
		logutil.SanitizeForLog(entry.Actor),
		logutil.SanitizeForLog(entry.Details),
	)
}

// Prune deletes audit records older than the retention window and returns
// the number of rows removed.
func (a *Auditor) Prune() (int64, error) {
	cutoff := a.nowFn().AddDate(0, 0, -a.retentionDays)
	res := a.db.Where("created_at < ?", cutoff).Delete(&database.AuditLog{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("[audit] pruned %d records older than %s", res.RowsAffected, cutoff.Format(time.RFC3339))
	}
	return res.RowsAffected, nil
}
