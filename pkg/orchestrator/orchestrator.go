// Package orchestrator は生成・一括生成・編集の各操作を直列化し、
// ソースごとの「現在の」成果物を管理します。
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/shouni/gemini-product-studio/pkg/apperr"
	"github.com/shouni/gemini-product-studio/pkg/domain"
	"github.com/shouni/gemini-product-studio/pkg/imgutil"
)

// Generator は画像生成サービスとのやり取りを担当します。
// generator.Client がこのインターフェースを満たします。
type Generator interface {
	Generate(ctx context.Context, src domain.SourceImage, settings domain.GenerationSettings, model *domain.SourceImage) (*domain.GeneratedArtifact, error)
	Refine(ctx context.Context, prior domain.GeneratedArtifact, instruction string) (*domain.GeneratedArtifact, error)
}

// State はオーケストレーターの実行状態です。
type State int

const (
	StateIdle State = iota
	StateGenerating
	StateBatchRunning
	StateRefining
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateGenerating:
		return "Generating"
	case StateBatchRunning:
		return "BatchRunning"
	case StateRefining:
		return "Refining"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Options はオーケストレーターの実行方針です。ゼロ値は逐次実行・再試行なし・無制限です。
type Options struct {
	// Concurrency はバッチで同時に発行するリクエスト数です。1 以下なら逐次実行です。
	Concurrency int
	// MaxRetries は ServiceUnavailable に限った再試行回数です。
	MaxRetries    int
	RetryInterval time.Duration
	// RequestsPerMinute が正なら、すべてのリクエストをこの速度に抑えます。
	RequestsPerMinute int
	// Compositor はプレビュー合成に使います。nil なら imgutil.DefaultCompositor です。
	Compositor *imgutil.Compositor
}

// Orchestrator は同時にひとつの操作だけを受け付けます。
// 実行中に別の操作を呼ぶと ErrOperationInProgress を返し、状態は変わりません。
type Orchestrator struct {
	gen     Generator
	opts    Options
	limiter *rate.Limiter

	mu        sync.Mutex
	state     State
	artifacts map[string]*domain.GeneratedArtifact
}

// New は Orchestrator を初期化します。
func New(gen Generator, opts Options) (*Orchestrator, error) {
	if gen == nil {
		return nil, fmt.Errorf("gen (orchestrator.Generator) is required")
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Compositor == nil {
		opts.Compositor = imgutil.DefaultCompositor()
	}

	o := &Orchestrator{
		gen:       gen,
		opts:      opts,
		artifacts: make(map[string]*domain.GeneratedArtifact),
	}
	if opts.RequestsPerMinute > 0 {
		o.limiter = rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60.0), 1)
	}
	return o, nil
}

// State は現在の実行状態を返します。
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) begin(s State) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateIdle {
		return apperr.Newf(apperr.KindOperationInProgress, "%s is running", o.state)
	}
	o.state = s
	return nil
}

func (o *Orchestrator) end() {
	o.mu.Lock()
	o.state = StateIdle
	o.mu.Unlock()
}

func (o *Orchestrator) supersede(a *domain.GeneratedArtifact) {
	o.mu.Lock()
	o.artifacts[a.SourceID] = a
	o.mu.Unlock()
}

// Generate は 1 枚の商品画像を生成し、成功したらそのソースの成果物を置き換えます。
// 失敗したときは以前の成果物をそのまま残します。
func (o *Orchestrator) Generate(ctx context.Context, src domain.SourceImage, settings domain.GenerationSettings, model *domain.SourceImage) (*domain.GeneratedArtifact, error) {
	if err := o.begin(StateGenerating); err != nil {
		return nil, err
	}
	defer o.end()

	a, err := o.call(ctx, func(ctx context.Context) (*domain.GeneratedArtifact, error) {
		return o.gen.Generate(ctx, src, settings, model)
	})
	if err != nil {
		return nil, err
	}
	o.supersede(a)
	slog.Info("商品画像を生成しました", "source", src.ID, "artifact", a.ID)
	return cloneArtifact(a), nil
}

// Refine はソースの現在の成果物に編集指示を適用し、成功したら置き換えます。
// 空の指示は通信せずに InvalidRequest になります。
func (o *Orchestrator) Refine(ctx context.Context, sourceID, instruction string) (*domain.GeneratedArtifact, error) {
	if strings.TrimSpace(instruction) == "" {
		return nil, apperr.Newf(apperr.KindInvalidRequest, "edit instruction is empty")
	}
	if err := o.begin(StateRefining); err != nil {
		return nil, err
	}
	defer o.end()

	prior, ok := o.Artifact(sourceID)
	if !ok {
		return nil, apperr.Newf(apperr.KindInvalidRequest, "no generated image for source %q", sourceID)
	}

	a, err := o.call(ctx, func(ctx context.Context) (*domain.GeneratedArtifact, error) {
		return o.gen.Refine(ctx, *prior, instruction)
	})
	if err != nil {
		return nil, err
	}
	a.SourceID = sourceID
	o.supersede(a)
	slog.Info("生成画像を編集しました", "source", sourceID, "artifact", a.ID)
	return cloneArtifact(a), nil
}

// Artifact はソースの現在の成果物のコピーを返します。
func (o *Orchestrator) Artifact(sourceID string) (*domain.GeneratedArtifact, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	a, ok := o.artifacts[sourceID]
	if !ok {
		return nil, false
	}
	return cloneArtifact(a), true
}

// Artifacts はすべての現在の成果物を SourceID 順に返します。
func (o *Orchestrator) Artifacts() []domain.GeneratedArtifact {
	o.mu.Lock()
	out := make([]domain.GeneratedArtifact, 0, len(o.artifacts))
	for _, a := range o.artifacts {
		out = append(out, *cloneArtifact(a))
	}
	o.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].SourceID < out[j].SourceID })
	return out
}

// Discard はソースが作業対象から外されたときに成果物を破棄します。
func (o *Orchestrator) Discard(sourceID string) {
	o.mu.Lock()
	delete(o.artifacts, sourceID)
	o.mu.Unlock()
}

func cloneArtifact(a *domain.GeneratedArtifact) *domain.GeneratedArtifact {
	c := *a
	c.Data = append([]byte(nil), a.Data...)
	return &c
}
