package orchestrator

import (
	"context"
	"log/slog"

	"github.com/cenkalti/backoff/v4"

	"github.com/shouni/gemini-product-studio/pkg/apperr"
	"github.com/shouni/gemini-product-studio/pkg/domain"
)

type attemptFunc func(ctx context.Context) (*domain.GeneratedArtifact, error)

// call は 1 件のリクエストを発行します。
// レートリミッターで待ってから送信し、ServiceUnavailable だけを指数バックオフで再試行します。
// 返すエラーは常に *apperr.Error を含みます。
func (o *Orchestrator) call(ctx context.Context, fn attemptFunc) (*domain.GeneratedArtifact, error) {
	var out *domain.GeneratedArtifact
	attempt := 0

	operation := func() error {
		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}
		attempt++
		a, err := fn(ctx)
		if err == nil {
			out = a
			return nil
		}
		if !apperr.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		if attempt <= o.opts.MaxRetries {
			slog.Warn("サービスが一時的に利用できないため再試行します", "attempt", attempt, "max_retries", o.opts.MaxRetries, "error", err)
		}
		return err
	}

	if err := backoff.Retry(operation, o.newBackOff(ctx)); err != nil {
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		return nil, apperr.Classify(err)
	}
	return out, nil
}

func (o *Orchestrator) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if o.opts.RetryInterval > 0 {
		exp.InitialInterval = o.opts.RetryInterval
	}
	// 打ち切りは回数だけで決める
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(o.opts.MaxRetries)), ctx)
}
