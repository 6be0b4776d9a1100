package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, "clean, seamless, bright white studio", s.Background)
	assert.Equal(t, "bright, warm, natural afternoon sunlight", s.Lighting)
	assert.Equal(t, "straight-on front view", s.Angle)
	assert.Equal(t, InteractionWearing, s.Interaction)
	assert.Equal(t, WatermarkBottomRight, s.WatermarkPosition)
	assert.Equal(t, AspectOriginal, s.AspectTag)
	assert.False(t, s.UseModel)
}

func TestGenerationSettings_WatermarkSpec(t *testing.T) {
	t.Run("透かし文字が空ならnilを返す", func(t *testing.T) {
		s := GenerationSettings{Watermark: "   ", WatermarkPosition: WatermarkTopLeft}
		assert.Nil(t, s.WatermarkSpec())
	})

	t.Run("透かし文字があれば位置と一緒に返す", func(t *testing.T) {
		s := GenerationSettings{Watermark: " shop.example ", WatermarkPosition: WatermarkTopLeft}
		wm := s.WatermarkSpec()
		require.NotNil(t, wm)
		assert.Equal(t, "shop.example", wm.Text)
		assert.Equal(t, WatermarkTopLeft, wm.Position)
	})
}

func TestParseInteractionMode(t *testing.T) {
	m, err := ParseInteractionMode(" Holding ")
	require.NoError(t, err)
	assert.Equal(t, InteractionHolding, m)

	_, err = ParseInteractionMode("juggling")
	assert.Error(t, err)
}

func TestParseWatermarkPosition(t *testing.T) {
	for _, v := range []string{"top-left", "top-center", "top-right", "bottom-left", "bottom-center", "bottom-right"} {
		p, err := ParseWatermarkPosition(v)
		require.NoError(t, err, v)
		assert.Equal(t, WatermarkPosition(v), p)
	}

	_, err := ParseWatermarkPosition("middle")
	assert.Error(t, err)
}

func TestResolvePresets(t *testing.T) {
	assert.Equal(t, "elegant white marble surface", ResolveBackground("marble"))
	assert.Equal(t, "a neon-lit alley", ResolveBackground(" a neon-lit alley "))
	assert.Equal(t, "backlit with a soft glow around the edges", ResolveLighting("BACKLIT"))
	assert.Equal(t, "flat lay, top-down perspective", ResolveAngle("top-down"))
}

func TestResolveAspect(t *testing.T) {
	tests := []struct {
		tag  string
		want AspectRatio
		ok   bool
	}{
		{"1:1", AspectRatio{1, 1}, true},
		{"9:16", AspectRatio{9, 16}, true},
		{"2:3", AspectRatio{2, 3}, true},
		{"pinterest-pin", AspectRatio{2, 3}, true},
		{"instagram-story", AspectRatio{9, 16}, true},
		{"original", AspectRatio{}, false},
		{"7:5", AspectRatio{}, false},
		{"", AspectRatio{}, false},
	}
	for _, tt := range tests {
		got, ok := ResolveAspect(tt.tag)
		assert.Equal(t, tt.ok, ok, tt.tag)
		assert.Equal(t, tt.want, got, tt.tag)
	}
}

func TestBatchProgress_Done(t *testing.T) {
	assert.False(t, BatchProgress{}.Done())
	assert.False(t, BatchProgress{Completed: 1, Total: 3}.Done())
	assert.True(t, BatchProgress{Completed: 3, Total: 3}.Done())
}
