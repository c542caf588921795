// Package crypto 密码哈希与脱敏单元测试
package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Run("哈希成功且不泄露明文", func(t *testing.T) {
		hash, err := HashPassword("guest-password-123")
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
		assert.NotContains(t, hash, "guest-password-123")
		assert.True(t, strings.HasPrefix(hash, "$2a$"))
	})

	t.Run("相同密码哈希不同", func(t *testing.T) {
		first, err := HashPassword("same-password")
		require.NoError(t, err)
		second, err := HashPassword("same-password")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-password")
	require.NoError(t, err)

	t.Run("正确密码", func(t *testing.T) {
		assert.True(t, VerifyPassword("correct-password", hash))
	})

	t.Run("错误密码", func(t *testing.T) {
		assert.False(t, VerifyPassword("wrong-password", hash))
	})

	t.Run("空密码", func(t *testing.T) {
		assert.False(t, VerifyPassword("", hash))
	})

	t.Run("非法哈希", func(t *testing.T) {
		assert.False(t, VerifyPassword("correct-password", "not-a-bcrypt-hash"))
	})
}

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"常规邮箱", "zhangsan@example.com", "zh***@example.com"},
		{"前缀过短不脱敏", "ab@example.com", "ab@example.com"},
		{"单字符前缀", "a@example.com", "a@example.com"},
		{"无@原样返回", "not-an-email", "not-an-email"},
		{"空字符串", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskEmail(tt.email))
		})
	}
}

func TestMaskPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{"标准手机号", "13812345678", "138****5678"},
		{"长度不符原样返回", "1381234", "1381234"},
		{"空字符串", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskPhone(tt.phone))
		})
	}
}

func BenchmarkVerifyPassword(b *testing.B) {
	hash, _ := HashPassword("benchmark-password")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = VerifyPassword("benchmark-password", hash)
	}
}
