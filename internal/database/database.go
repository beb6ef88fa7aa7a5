package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/termgate/termgate/internal/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init() error {
	dbPath := config.Cfg.DatabasePath
	if dbDir := filepath.Dir(dbPath); dbDir != "" {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return fmt.Errorf("create db directory: %w", err)
		}
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}

	if err := DB.AutoMigrate(&User{}, &Server{}, &SSHKey{}, &AuditLog{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	return nil
}

func Close() error {
	if DB != nil {
		sqlDB, err := DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

// User helpers

func GetUserByUsername(username string) (*User, error) {
	var u User
	if err := DB.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func GetUserByID(id uint) (*User, error) {
	var u User
	if err := DB.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func CreateUser(user *User) error {
	return DB.Create(user).Error
}

func UserCount() (int64, error) {
	var count int64
	err := DB.Model(&User{}).Count(&count).Error
	return count, err
}

func UpdateUserPassword(userID uint, passwordHash string) error {
	return DB.Model(&User{}).Where("id = ?", userID).Update("password_hash", passwordHash).Error
}

func GetFirstAdmin() (*User, error) {
	var u User
	if err := DB.Where("role = ?", "admin").Order("id").First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Server helpers

func GetServer(id uint) (*Server, error) {
	var s Server
	if err := DB.First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func CreateServer(s *Server) error {
	return DB.Create(s).Error
}

func SaveServer(s *Server) error {
	return DB.Save(s).Error
}

func DeleteServers(ids []uint) error {
	return DB.Delete(&Server{}, ids).Error
}

// ServerFilter narrows ListServers results.
type ServerFilter struct {
	Search    string
	Statuses  []string
	AuthTypes []string
	Page      int
	PerPage   int
}

func ListServers(f ServerFilter) (servers []Server, total int64, err error) {
	q := DB.Model(&Server{})
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("name LIKE ? OR ip_address LIKE ? OR username LIKE ?", like, like, like)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if len(f.AuthTypes) > 0 {
		q = q.Where("auth_type IN ?", f.AuthTypes)
	}
	if err = q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.PerPage > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		q = q.Offset((page - 1) * f.PerPage).Limit(f.PerPage)
	}
	err = q.Order("id").Find(&servers).Error
	return servers, total, err
}

func CountServersByStatus(status string) int64 {
	var n int64
	DB.Model(&Server{}).Where("status = ?", status).Count(&n)
	return n
}

func CountServersByAuthType(authType string) int64 {
	var n int64
	DB.Model(&Server{}).Where("auth_type = ?", authType).Count(&n)
	return n
}

// SSH key helpers

func GetSSHKey(id uint) (*SSHKey, error) {
	var k SSHKey
	if err := DB.First(&k, id).Error; err != nil {
		return nil, err
	}
	return &k, nil
}

func CreateSSHKey(k *SSHKey) error {
	return DB.Create(k).Error
}

func SaveSSHKey(k *SSHKey) error {
	return DB.Save(k).Error
}

func DeleteSSHKeys(ids []uint) error {
	return DB.Delete(&SSHKey{}, ids).Error
}

// SSHKeyFilter narrows ListSSHKeys results.
type SSHKeyFilter struct {
	Search  string
	Types   []string
	Page    int
	PerPage int
}

func ListSSHKeys(f SSHKeyFilter) (keys []SSHKey, total int64, err error) {
	q := DB.Model(&SSHKey{})
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("name LIKE ? OR fingerprint LIKE ?", like, like)
	}
	if len(f.Types) > 0 {
		q = q.Where("type IN ?", f.Types)
	}
	if err = q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.PerPage > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		q = q.Offset((page - 1) * f.PerPage).Limit(f.PerPage)
	}
	err = q.Order("id").Find(&keys).Error
	return keys, total, err
}

func CountSSHKeysByType(keyType string) int64 {
	var n int64
	DB.Model(&SSHKey{}).Where("type = ?", keyType).Count(&n)
	return n
}
