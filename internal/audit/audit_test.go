package audit

import (
	"testing"
	"time"

	"github.com/termgate/termgate/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(&database.AuditLog{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func TestRecordWritesRow(t *testing.T) {
	db := setupTestDB(t)
	a := NewAuditor(db, 90)

	a.Record(Entry{
		SessionID: "abc",
		ServerID:  3,
		EventType: EventCommandExecuted,
		Actor:     "admin",
		SourceIP:  "10.0.0.1:4242",
		Details:   "ls -l",
	})

	var row database.AuditLog
	if err := db.First(&row).Error; err != nil {
		t.Fatalf("load audit row: %v", err)
	}
	if row.EventType != EventCommandExecuted || row.SessionID != "abc" || row.ServerID != 3 {
		t.Errorf("unexpected row %+v", row)
	}
}

func TestRecordSanitizesDetails(t *testing.T) {
	db := setupTestDB(t)
	a := NewAuditor(db, 90)

	a.Record(Entry{
		EventType: EventCommandExecuted,
		Details:   "ls\nrm -rf /\x1b[2J",
	})

	var row database.AuditLog
	if err := db.First(&row).Error; err != nil {
		t.Fatalf("load audit row: %v", err)
	}
	for _, c := range row.Details {
		if c < 0x20 && c != 0x09 {
			t.Errorf("control character %q survived sanitization: %q", c, row.Details)
		}
	}
}

func TestRecordNilAuditorIsNoop(t *testing.T) {
	var a *Auditor
	a.Record(Entry{EventType: EventSessionConnected})
}

func TestPrune(t *testing.T) {
	db := setupTestDB(t)
	a := NewAuditor(db, 30)

	now := time.Now()
	a.nowFn = func() time.Time { return now }

	old := database.AuditLog{EventType: EventSessionConnected, CreatedAt: now.AddDate(0, 0, -45)}
	recent := database.AuditLog{EventType: EventSessionConnected, CreatedAt: now.AddDate(0, 0, -5)}
	if err := db.Create(&old).Error; err != nil {
		t.Fatalf("create old row: %v", err)
	}
	if err := db.Create(&recent).Error; err != nil {
		t.Fatalf("create recent row: %v", err)
	}

	removed, err := a.Prune()
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 row pruned, got %d", removed)
	}

	var count int64
	db.Model(&database.AuditLog{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 row left, got %d", count)
	}
}
