/*
 * @module service/auth/access_key_service
 * @description 访问密钥服务，提供密钥签发、校验、启停与吊销，密钥仅存bcrypt哈希
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 签发时返回一次完整密钥，之后只能通过校验接口使用
 * @rules 完整密钥 = 前缀 + 随机体，数据库只存哈希，校验按前缀定位后逐一比对
 * @dependencies salescleanse-service/service/models, gorm.io/gorm, golang.org/x/crypto/bcrypt
 * @refs api/middleware/access_key_auth.go
 */

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"salescleanse-service/service/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	keyPrefixLen = 8
	keyBodyLen   = 64
)

var (
	// ErrInvalidKey 密钥无效、被禁用或不存在
	ErrInvalidKey = errors.New("访问密钥无效")
	// ErrKeyExpired 密钥已过期
	ErrKeyExpired = errors.New("访问密钥已过期")
)

// AccessKeyService 访问密钥服务
type AccessKeyService struct {
	db *gorm.DB
}

// NewAccessKeyService 创建访问密钥服务实例
func NewAccessKeyService(db *gorm.DB) *AccessKeyService {
	return &AccessKeyService{db: db}
}

// IssueKey 签发新密钥，返回密钥记录与完整密钥值（仅此一次）
func (s *AccessKeyService) IssueKey(name string, expiresAt *time.Time) (*models.AccessKey, string, error) {
	if name == "" {
		return nil, "", errors.New("密钥名称不能为空")
	}

	fullKey, err := generateRandomString(keyPrefixLen + keyBodyLen)
	if err != nil {
		return nil, "", err
	}
	prefix := fullKey[:keyPrefixLen]

	hashed, err := bcrypt.GenerateFromPassword([]byte(fullKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	key := &models.AccessKey{
		Name:      name,
		Prefix:    prefix,
		KeyHash:   string(hashed),
		IsEnabled: true,
		ExpiresAt: expiresAt,
	}
	if err := s.db.Create(key).Error; err != nil {
		return nil, "", err
	}

	return key, fullKey, nil
}

// VerifyKey 校验完整密钥值，成功时更新最后使用时间
func (s *AccessKeyService) VerifyKey(keyValue string) (*models.AccessKey, error) {
	if len(keyValue) < keyPrefixLen {
		return nil, ErrInvalidKey
	}
	prefix := keyValue[:keyPrefixLen]

	var keys []models.AccessKey
	if err := s.db.Where("prefix = ? AND is_enabled = ?", prefix, true).Find(&keys).Error; err != nil {
		return nil, err
	}

	// 前缀可能碰撞，逐一比对哈希
	for i := range keys {
		key := &keys[i]
		if err := bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(keyValue)); err != nil {
			continue
		}
		if key.ExpiresAt != nil && key.ExpiresAt.Before(time.Now()) {
			return nil, ErrKeyExpired
		}

		now := time.Now()
		s.db.Model(key).Update("last_used_at", now)
		key.LastUsedAt = &now
		return key, nil
	}

	return nil, ErrInvalidKey
}

// ListKeys 获取密钥列表（不含哈希明细）
func (s *AccessKeyService) ListKeys() ([]models.AccessKey, error) {
	var keys []models.AccessKey
	if err := s.db.Order("created_at DESC").Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// SetKeyEnabled 启用或禁用密钥
func (s *AccessKeyService) SetKeyEnabled(id string, enabled bool) error {
	result := s.db.Model(&models.AccessKey{}).Where("id = ?", id).Update("is_enabled", enabled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RevokeKey 吊销（删除）密钥
func (s *AccessKeyService) RevokeKey(id string) error {
	result := s.db.Delete(&models.AccessKey{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func generateRandomString(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
