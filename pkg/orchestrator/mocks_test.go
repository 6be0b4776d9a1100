package orchestrator

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shouni/gemini-product-studio/pkg/domain"
)

// --- Mocks ---

type mockGenerator struct {
	mu          sync.Mutex
	generateFn  func(ctx context.Context, src domain.SourceImage) (*domain.GeneratedArtifact, error)
	refineFn    func(ctx context.Context, prior domain.GeneratedArtifact, instruction string) (*domain.GeneratedArtifact, error)
	generated   []string
	refineCalls int
}

func (m *mockGenerator) Generate(ctx context.Context, src domain.SourceImage, settings domain.GenerationSettings, model *domain.SourceImage) (*domain.GeneratedArtifact, error) {
	m.mu.Lock()
	m.generated = append(m.generated, src.ID)
	fn := m.generateFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, src)
	}
	return artifactFor(src.ID, "ok"), nil
}

func (m *mockGenerator) Refine(ctx context.Context, prior domain.GeneratedArtifact, instruction string) (*domain.GeneratedArtifact, error) {
	m.mu.Lock()
	m.refineCalls++
	fn := m.refineFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, prior, instruction)
	}
	return &domain.GeneratedArtifact{ID: "edited", SourceID: prior.SourceID, Data: []byte(instruction), MimeType: "image/png"}, nil
}

func (m *mockGenerator) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.generated...)
}

func artifactFor(sourceID, tag string) *domain.GeneratedArtifact {
	return &domain.GeneratedArtifact{
		ID:       "processed-" + sourceID + "-" + tag,
		SourceID: sourceID,
		Data:     []byte(tag),
		MimeType: "image/png",
	}
}

func sources(ids ...string) []domain.SourceImage {
	out := make([]domain.SourceImage, len(ids))
	for i, id := range ids {
		out[i] = domain.SourceImage{ID: id, Name: id + ".png", Data: []byte(id), MimeType: "image/png"}
	}
	return out
}

func newTestOrchestrator(t *testing.T, gen Generator, opts Options) *Orchestrator {
	t.Helper()
	o, err := New(gen, opts)
	require.NoError(t, err)
	return o
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}
