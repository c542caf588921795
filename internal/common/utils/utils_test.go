// Package utils 通用工具函数单元测试
package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ==================== GenerateBookingNo 测试 ====================

func TestGenerateBookingNo(t *testing.T) {
	prefixes := []string{"BK", "HS", "B"}
	for _, prefix := range prefixes {
		t.Run(prefix, func(t *testing.T) {
			bookingNo := GenerateBookingNo(prefix)
			assert.NotEmpty(t, bookingNo)
			assert.True(t, strings.HasPrefix(bookingNo, prefix))
			// 前缀 + 14位时间戳 + 6位随机数
			assert.Equal(t, len(prefix)+20, len(bookingNo))
		})
	}
}

func TestGenerateBookingNo_Uniqueness(t *testing.T) {
	const prefix = "BK"
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		bookingNo := GenerateBookingNo(prefix)
		assert.False(t, seen[bookingNo], "预订单号应该是唯一的")
		seen[bookingNo] = true
	}
}

// ==================== GenerateRandomNumber 测试 ====================

func TestGenerateRandomNumber(t *testing.T) {
	lengths := []int{1, 4, 6, 10}
	for _, length := range lengths {
		result := GenerateRandomNumber(length)
		assert.Equal(t, length, len(result))
		for _, c := range result {
			assert.True(t, c >= '0' && c <= '9')
		}
	}
}

func TestGenerateRandomNumber_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	duplicates := 0

	for i := 0; i < 100; i++ {
		result := GenerateRandomNumber(10)
		if seen[result] {
			duplicates++
		}
		seen[result] = true
	}

	// 10位随机数字重复概率极低
	assert.Less(t, duplicates, 2)
}

// ==================== GenerateCouponCode 测试 ====================

func TestGenerateCouponCode(t *testing.T) {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	code := GenerateCouponCode(8)
	assert.Equal(t, 8, len(code))
	for _, c := range code {
		assert.True(t, strings.ContainsRune(charset, c), "不应包含易混淆字符: %c", c)
	}
}

func TestGenerateCouponCode_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		code := GenerateCouponCode(8)
		assert.False(t, seen[code], "优惠码应该是唯一的")
		seen[code] = true
	}
}

// ==================== ValidateEmail 测试 ====================

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{"普通邮箱", "user@example.com", true},
		{"带点号", "first.last@example.com", true},
		{"带加号", "user+tag@example.com", true},
		{"子域名", "user@mail.example.com", true},
		{"缺少@", "userexample.com", false},
		{"缺少域名", "user@", false},
		{"缺少顶级域", "user@example", false},
		{"空字符串", "", false},
		{"含空格", "user name@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateEmail(tt.email))
		})
	}
}

// ==================== Round2 测试 ====================

func TestRound2(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{"整数不变", 100, 100},
		{"两位小数不变", 99.99, 99.99},
		{"三位小数舍去", 33.334, 33.33},
		{"三位小数进位", 14.9985, 15.00},
		{"零", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Round2(tt.input), 1e-9)
		})
	}
}

// ==================== DateOnly 测试 ====================

func TestDateOnly(t *testing.T) {
	input := time.Date(2026, 3, 15, 18, 30, 45, 123, time.Local)
	got := DateOnly(input)

	assert.Equal(t, 2026, got.Year())
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 15, got.Day())
	assert.Equal(t, 0, got.Hour())
	assert.Equal(t, 0, got.Minute())
	assert.Equal(t, 0, got.Second())
	assert.Equal(t, 0, got.Nanosecond())
	assert.Equal(t, input.Location(), got.Location())
}

func TestDateOnly_PreservesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	input := time.Date(2026, 3, 15, 23, 59, 59, 0, loc)
	got := DateOnly(input)

	assert.Equal(t, 15, got.Day())
	assert.Equal(t, loc, got.Location())
}

// ==================== 指针辅助函数测试 ====================

func TestStringPtr(t *testing.T) {
	s := "hello"
	ptr := StringPtr(s)
	assert.NotNil(t, ptr)
	assert.Equal(t, s, *ptr)
}

func TestIntPtr(t *testing.T) {
	i := 42
	ptr := IntPtr(i)
	assert.NotNil(t, ptr)
	assert.Equal(t, i, *ptr)
}

func TestInt64Ptr(t *testing.T) {
	var i int64 = 42
	ptr := Int64Ptr(i)
	assert.NotNil(t, ptr)
	assert.Equal(t, i, *ptr)
}

func TestFloat64Ptr(t *testing.T) {
	f := 3.14
	ptr := Float64Ptr(f)
	assert.NotNil(t, ptr)
	assert.Equal(t, f, *ptr)
}

func TestTimePtr(t *testing.T) {
	now := time.Now()
	ptr := TimePtr(now)
	assert.NotNil(t, ptr)
	assert.Equal(t, now, *ptr)
}

func TestSafeString(t *testing.T) {
	assert.Equal(t, "", SafeString(nil))
	s := "value"
	assert.Equal(t, "value", SafeString(&s))
}

func TestSafeInt(t *testing.T) {
	assert.Equal(t, 0, SafeInt(nil))
	i := 7
	assert.Equal(t, 7, SafeInt(&i))
}

func TestSafeFloat64(t *testing.T) {
	assert.Equal(t, 0.0, SafeFloat64(nil))
	f := 2.5
	assert.Equal(t, 2.5, SafeFloat64(&f))
}

// ==================== 切片辅助函数测试 ====================

func TestContains(t *testing.T) {
	t.Run("字符串切片", func(t *testing.T) {
		slice := []string{"pending", "confirmed", "checked_in"}
		assert.True(t, Contains(slice, "confirmed"))
		assert.False(t, Contains(slice, "cancelled"))
	})

	t.Run("整数切片", func(t *testing.T) {
		slice := []int{1, 2, 3}
		assert.True(t, Contains(slice, 2))
		assert.False(t, Contains(slice, 4))
	})

	t.Run("空切片", func(t *testing.T) {
		assert.False(t, Contains([]string{}, "any"))
	})
}

func TestUnique(t *testing.T) {
	t.Run("去重并保序", func(t *testing.T) {
		input := []string{"a", "b", "a", "c", "b"}
		assert.Equal(t, []string{"a", "b", "c"}, Unique(input))
	})

	t.Run("无重复", func(t *testing.T) {
		input := []int{1, 2, 3}
		assert.Equal(t, []int{1, 2, 3}, Unique(input))
	})

	t.Run("空切片", func(t *testing.T) {
		assert.Empty(t, Unique([]string{}))
	})
}

func TestMax(t *testing.T) {
	assert.Equal(t, 5, Max(3, 5))
	assert.Equal(t, int64(10), Max(int64(10), int64(2)))
	assert.Equal(t, 2.5, Max(1.5, 2.5))
}

func TestMin(t *testing.T) {
	assert.Equal(t, 3, Min(3, 5))
	assert.Equal(t, int64(2), Min(int64(10), int64(2)))
	assert.Equal(t, 1.5, Min(1.5, 2.5))
}

// ==================== Pagination 测试 ====================

func TestPagination_GetOffset(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		want     int
	}{
		{"第一页", 1, 10, 0},
		{"第二页", 2, 10, 10},
		{"第五页", 5, 20, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Pagination{Page: tt.page, PageSize: tt.pageSize}
			assert.Equal(t, tt.want, p.GetOffset())
		})
	}
}

func TestPagination_GetLimit(t *testing.T) {
	p := &Pagination{Page: 1, PageSize: 25}
	assert.Equal(t, 25, p.GetLimit())
}

func TestPagination_Normalize(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{"正常参数不变", 2, 20, 2, 20},
		{"Page too small", 0, 20, 1, 20},
		{"Page negative", -1, 20, 1, 20},
		{"PageSize too small", 1, 0, 1, 10},
		{"PageSize too large", 1, 500, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Pagination{Page: tt.page, PageSize: tt.pageSize}
			p.Normalize()
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPageSize, p.PageSize)
		})
	}
}

func TestPagination_GetTotalPages(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		pageSize int
		want     int
	}{
		{"整除", 100, 10, 10},
		{"有余数", 101, 10, 11},
		{"不足一页", 5, 10, 1},
		{"零条记录", 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Pagination{PageSize: tt.pageSize, Total: tt.total}
			assert.Equal(t, tt.want, p.GetTotalPages())
		})
	}
}

// ==================== 基准测试 ====================

func BenchmarkGenerateBookingNo(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = GenerateBookingNo("BK")
	}
}

func BenchmarkGenerateRandomNumber(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = GenerateRandomNumber(6)
	}
}

func BenchmarkGenerateCouponCode(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = GenerateCouponCode(8)
	}
}

func BenchmarkValidateEmail(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = ValidateEmail("user@example.com")
	}
}
