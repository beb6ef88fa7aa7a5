package database

import "time"

// Authentication modes for a managed server.
const (
	AuthTypePassword   = "password"
	AuthTypePrivateKey = "private_key"
)

// User is an operator of the panel.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"default:operator" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Server is a remote machine reachable through the command gateway.
// Exactly one of Password / SSHKeyID is populated, matching AuthType.
type Server struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Name      string    `gorm:"not null" json:"name"`
	IPAddress string    `gorm:"not null" json:"ip_address"`
	Port      int       `gorm:"default:22" json:"port"`
	Username  string    `gorm:"not null" json:"username"`
	Password  string    `json:"-"`
	SSHKeyID  *uint     `json:"ssh_key_id"`
	Status    string    `gorm:"default:active" json:"status"`
	AuthType  string    `gorm:"default:password" json:"auth_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SSHKey is a stored key pair. Fingerprint is always derived from PublicKey
// at generation time; it is never accepted from a caller.
type SSHKey struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index" json:"user_id"`
	Name        string    `gorm:"not null" json:"name"`
	Type        string    `gorm:"not null" json:"type"` // rsa | ed25519 | ecdsa
	KeySize     int       `json:"key_size"`             // meaningful for rsa only
	PublicKey   string    `gorm:"type:text" json:"public_key"`
	PrivateKey  string    `gorm:"type:text" json:"-"`
	Fingerprint string    `gorm:"index" json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AuditLog records gateway and key-management activity.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"index" json:"session_id"`
	ServerID  uint      `gorm:"index" json:"server_id"`
	EventType string    `gorm:"index;not null" json:"event_type"`
	Actor     string    `json:"actor"`
	SourceIP  string    `json:"source_ip"`
	Details   string    `gorm:"type:text" json:"details"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
