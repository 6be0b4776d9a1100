package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/shouni/gemini-product-studio/pkg/apperr"
	"github.com/shouni/gemini-product-studio/pkg/domain"
)

// ItemStatus はバッチ内の 1 件の結果です。
type ItemStatus int

const (
	ItemNotAttempted ItemStatus = iota
	ItemSucceeded
	ItemFailed
)

func (s ItemStatus) String() string {
	switch s {
	case ItemSucceeded:
		return "succeeded"
	case ItemFailed:
		return "failed"
	}
	return "not attempted"
}

// BatchItem はソース画像 1 件分の結果です。Err は ItemFailed のときだけ設定されます。
type BatchItem struct {
	SourceID string
	Status   ItemStatus
	Artifact *domain.GeneratedArtifact
	Err      error
}

// BatchReport はバッチ全体の結果です。Items は入力と同じ順序です。
type BatchReport struct {
	Items    []BatchItem
	Progress domain.BatchProgress

	// Halted は認証・クォータ系のエラーかキャンセルで途中終了したことを表します。
	Halted   bool
	HaltedAt string
	HaltErr  error
}

func (r *BatchReport) count(s ItemStatus) int {
	n := 0
	for _, it := range r.Items {
		if it.Status == s {
			n++
		}
	}
	return n
}

// Succeeded は成功件数を返します。
func (r *BatchReport) Succeeded() int { return r.count(ItemSucceeded) }

// Failed は失敗件数を返します。
func (r *BatchReport) Failed() int { return r.count(ItemFailed) }

// NotAttempted は中断により試行されなかった件数を返します。
func (r *BatchReport) NotAttempted() int { return r.count(ItemNotAttempted) }

// Batch はソース画像を順に生成します。
//
// 個別の失敗は記録して次に進みますが、認証・クォータ系のエラーでは直ちに停止します。
// 進捗は試行が終わるたびに onProgress へ通知されます (nil 可)。
// 終了後、成功したソースの成果物だけをまとめて置き換えます。
//
// Concurrency が 2 以上なら同時に複数件を発行しますが、進捗通知は直列で、
// 停止時には実行中のリクエストも取り消して未試行として扱います。
func (o *Orchestrator) Batch(ctx context.Context, sources []domain.SourceImage, settings domain.GenerationSettings, model *domain.SourceImage, onProgress func(domain.BatchProgress)) (*BatchReport, error) {
	if err := o.begin(StateBatchRunning); err != nil {
		return nil, err
	}
	defer o.end()

	r := &batchRun{
		report: &BatchReport{
			Items:    make([]BatchItem, len(sources)),
			Progress: domain.BatchProgress{Total: len(sources)},
		},
		onProgress: onProgress,
	}
	for i, src := range sources {
		r.report.Items[i] = BatchItem{SourceID: src.ID, Status: ItemNotAttempted}
	}

	slog.Info("一括生成を開始します", "total", len(sources), "concurrency", o.opts.Concurrency)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	r.cancel = cancel

	g := new(errgroup.Group)
	g.SetLimit(o.opts.Concurrency)
	for i := range sources {
		if runCtx.Err() != nil {
			break
		}
		src := sources[i]
		g.Go(func() error {
			// 前の試行で停止した場合はここで打ち切る
			if runCtx.Err() != nil {
				return nil
			}
			a, err := o.call(runCtx, func(ctx context.Context) (*domain.GeneratedArtifact, error) {
				return o.gen.Generate(ctx, src, settings, model)
			})
			r.record(runCtx, i, a, err)
			return nil
		})
	}
	_ = g.Wait()

	rep := r.report
	if !rep.Halted && ctx.Err() != nil && rep.NotAttempted() > 0 {
		rep.Halted = true
		rep.HaltErr = apperr.New(apperr.KindCanceled, ctx.Err())
		rep.HaltedAt = firstNotAttempted(rep)
	}

	o.mu.Lock()
	for i := range rep.Items {
		if it := rep.Items[i]; it.Status == ItemSucceeded {
			o.artifacts[it.SourceID] = it.Artifact
			rep.Items[i].Artifact = cloneArtifact(it.Artifact)
		}
	}
	o.mu.Unlock()

	slog.Info("一括生成が終了しました",
		"succeeded", rep.Succeeded(),
		"failed", rep.Failed(),
		"not_attempted", rep.NotAttempted(),
		"halted", rep.Halted,
	)
	return rep, nil
}

// batchRun はバッチ実行中の集計です。mu は report と onProgress の呼び出しを直列化します。
type batchRun struct {
	mu         sync.Mutex
	report     *BatchReport
	onProgress func(domain.BatchProgress)
	cancel     context.CancelFunc
}

func (r *batchRun) record(runCtx context.Context, i int, a *domain.GeneratedArtifact, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item := &r.report.Items[i]
	switch {
	case err == nil:
		item.Status = ItemSucceeded
		item.Artifact = a
	case apperr.KindOf(err) == apperr.KindCanceled && runCtx.Err() != nil:
		// 停止やキャンセルで取り消された実行中のリクエストは試行に数えない
		return
	default:
		item.Status = ItemFailed
		item.Err = err
	}

	r.report.Progress.Completed++
	if r.onProgress != nil {
		r.onProgress(r.report.Progress)
	}

	if err != nil && apperr.IsHardStop(err) && !r.report.Halted {
		r.report.Halted = true
		r.report.HaltedAt = item.SourceID
		r.report.HaltErr = err
		r.cancel()
		slog.Error("復旧できないエラーのため一括生成を停止します", "source", item.SourceID, "error", err)
		return
	}
	if err != nil {
		slog.Warn("画像の生成に失敗しました。次の画像に進みます", "source", item.SourceID, "error", err)
	}
}

func firstNotAttempted(r *BatchReport) string {
	for _, it := range r.Items {
		if it.Status == ItemNotAttempted {
			return it.SourceID
		}
	}
	return ""
}

// HaltError はバッチが停止した理由を返します。停止していなければ nil です。
func (r *BatchReport) HaltError() error {
	if !r.Halted {
		return nil
	}
	if r.HaltErr == nil {
		return errors.New("batch halted")
	}
	return r.HaltErr
}
