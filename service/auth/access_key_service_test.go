/*
 * @module service/auth/access_key_service_test
 * @description 访问密钥服务单元测试，覆盖签发、校验、过期、启停与吊销
 * @architecture 单元测试 - 使用内存数据库
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 签发密钥 -> 校验 -> 修改状态 -> 再次校验
 * @rules 完整密钥只在签发时返回一次，库中只存哈希
 * @dependencies testing, testify, salescleanse-service/testutil
 * @refs access_key_service.go
 */

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"salescleanse-service/testutil"
)

func newTestService(t *testing.T) *AccessKeyService {
	t.Helper()
	testDB := testutil.NewTestDB()
	t.Cleanup(testDB.Close)
	return NewAccessKeyService(testDB.DB)
}

func TestIssueAndVerifyKey(t *testing.T) {
	s := newTestService(t)

	key, fullKey, err := s.IssueKey("数据平台对接", nil)
	require.NoError(t, err)
	require.NotNil(t, key)

	// 完整密钥 = 8位前缀 + 64位随机体
	assert.Len(t, fullKey, 72)
	assert.Equal(t, fullKey[:8], key.Prefix)
	assert.NotEmpty(t, key.KeyHash)
	assert.NotContains(t, key.KeyHash, fullKey)
	assert.True(t, key.IsEnabled)
	assert.Nil(t, key.LastUsedAt)

	verified, err := s.VerifyKey(fullKey)
	require.NoError(t, err)
	assert.Equal(t, key.ID, verified.ID)
	require.NotNil(t, verified.LastUsedAt)
}

func TestIssueKeyRequiresName(t *testing.T) {
	s := newTestService(t)

	_, _, err := s.IssueKey("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "密钥名称不能为空")
}

func TestVerifyKeyRejectsInvalidValues(t *testing.T) {
	s := newTestService(t)
	_, fullKey, err := s.IssueKey("正常密钥", nil)
	require.NoError(t, err)

	testCases := []struct {
		name  string
		value string
	}{
		{"空密钥", ""},
		{"短于前缀长度", "abc"},
		{"前缀不存在", "ffffffff" + fullKey[8:]},
		{"前缀正确但密钥体错误", fullKey[:8] + "0000000000000000000000000000000000000000000000000000000000000000"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.VerifyKey(tc.value)
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestVerifyKeyExpired(t *testing.T) {
	s := newTestService(t)

	expired := time.Now().Add(-time.Hour)
	_, fullKey, err := s.IssueKey("已过期密钥", &expired)
	require.NoError(t, err)

	_, err = s.VerifyKey(fullKey)
	assert.ErrorIs(t, err, ErrKeyExpired)
}

func TestVerifyKeyNotYetExpired(t *testing.T) {
	s := newTestService(t)

	future := time.Now().Add(time.Hour)
	key, fullKey, err := s.IssueKey("未过期密钥", &future)
	require.NoError(t, err)

	verified, err := s.VerifyKey(fullKey)
	require.NoError(t, err)
	assert.Equal(t, key.ID, verified.ID)
}

func TestSetKeyEnabled(t *testing.T) {
	s := newTestService(t)

	key, fullKey, err := s.IssueKey("可停用密钥", nil)
	require.NoError(t, err)

	require.NoError(t, s.SetKeyEnabled(key.ID, false))
	_, err = s.VerifyKey(fullKey)
	assert.ErrorIs(t, err, ErrInvalidKey)

	// 重新启用后可继续使用
	require.NoError(t, s.SetKeyEnabled(key.ID, true))
	_, err = s.VerifyKey(fullKey)
	assert.NoError(t, err)

	err = s.SetKeyEnabled("no-such-key", true)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRevokeKey(t *testing.T) {
	s := newTestService(t)

	key, fullKey, err := s.IssueKey("待吊销密钥", nil)
	require.NoError(t, err)

	require.NoError(t, s.RevokeKey(key.ID))

	_, err = s.VerifyKey(fullKey)
	assert.ErrorIs(t, err, ErrInvalidKey)

	err = s.RevokeKey(key.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListKeys(t *testing.T) {
	s := newTestService(t)

	_, _, err := s.IssueKey("密钥一", nil)
	require.NoError(t, err)
	_, _, err = s.IssueKey("密钥二", nil)
	require.NoError(t, err)

	keys, err := s.ListKeys()
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}
