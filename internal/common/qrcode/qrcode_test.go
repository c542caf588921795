// Package qrcode 入住核验二维码单元测试
package qrcode

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qrlib "github.com/skip2/go-qrcode"
)

func TestNewGenerator(t *testing.T) {
	t.Run("默认参数", func(t *testing.T) {
		gen := NewGenerator()
		assert.Equal(t, 256, gen.size)
		assert.Equal(t, qrlib.Medium, gen.level)
	})

	t.Run("自定义尺寸与纠错级别", func(t *testing.T) {
		gen := NewGenerator(WithSize(512), WithHighRecovery())
		assert.Equal(t, 512, gen.size)
		assert.Equal(t, qrlib.High, gen.level)
	})
}

func TestGenerator_GeneratePNG(t *testing.T) {
	gen := NewGenerator()

	t.Run("预订号生成有效PNG", func(t *testing.T) {
		data, err := gen.GeneratePNG("B20260110123045123456")
		require.NoError(t, err)
		require.NotEmpty(t, data)

		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		bounds := img.Bounds()
		assert.Equal(t, bounds.Dx(), bounds.Dy())
	})

	t.Run("空内容报错", func(t *testing.T) {
		_, err := gen.GeneratePNG("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no data to encode")
	})

	t.Run("相同预订号输出一致", func(t *testing.T) {
		first, err := gen.GeneratePNG("B20260110123045123456")
		require.NoError(t, err)
		second, err := gen.GeneratePNG("B20260110123045123456")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("不同预订号输出不同", func(t *testing.T) {
		first, err := gen.GeneratePNG("B20260110123045123456")
		require.NoError(t, err)
		second, err := gen.GeneratePNG("B20260111093000654321")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})
}

func TestGenerator_GenerateDataURL(t *testing.T) {
	gen := NewGenerator()

	dataURL, err := gen.GenerateDataURL("B20260110123045123456")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))

	b64 := strings.TrimPrefix(dataURL, "data:image/png;base64,")
	data, err := base64.StdEncoding.DecodeString(b64)
	require.NoError(t, err)

	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func BenchmarkGenerateDataURL(b *testing.B) {
	gen := NewGenerator()
	for i := 0; i < b.N; i++ {
		_, _ = gen.GenerateDataURL("B20260110123045123456")
	}
}
