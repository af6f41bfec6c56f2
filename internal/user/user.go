package user

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	ErrInvalidInput   = errors.New("email and password are required")
	ErrDuplicateEmail = errors.New("email already registered")
)

// User 是一条注册记录。口令哈希是演示级的无盐 sha256：
// 这张表本质上是通知收件人名单，不承担认证安全性
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"size:256;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"size:64" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

type Store struct {
	db *gorm.DB
}

func NewStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("user: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		return nil, fmt.Errorf("user: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Register 创建一个新用户；邮箱统一小写，重复注册返回 ErrDuplicateEmail
func (s *Store) Register(email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	var existing User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrDuplicateEmail
	}

	u := &User{
		Email:        email,
		PasswordHash: hashPassword(password),
	}
	if err := s.db.Create(u).Error; err != nil {
		return nil, fmt.Errorf("user: create: %w", err)
	}
	return u, nil
}

// ListEmails 按注册先后返回全部收件地址
func (s *Store) ListEmails() ([]string, error) {
	var emails []string
	if err := s.db.Model(&User{}).Order("created_at ASC").Pluck("email", &emails).Error; err != nil {
		return nil, fmt.Errorf("user: list emails: %w", err)
	}
	return emails, nil
}

// Count 返回注册用户数
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.Model(&User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("user: count: %w", err)
	}
	return n, nil
}

func hashPassword(p string) string {
	sum := sha256.Sum256([]byte(p))
	return hex.EncodeToString(sum[:])
}
