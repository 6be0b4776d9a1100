package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/joho/godotenv"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shouni/gemini-product-studio/pkg/apperr"
	"github.com/shouni/gemini-product-studio/pkg/config"
	"github.com/shouni/gemini-product-studio/pkg/generator"
	"github.com/shouni/gemini-product-studio/pkg/imgutil"
	"github.com/shouni/gemini-product-studio/pkg/orchestrator"
	"github.com/shouni/gemini-product-studio/pkg/source"
)

// app はサブコマンドが共有する依存関係です。
type app struct {
	cfg       *config.Config
	loader    *source.Loader
	orch      *orchestrator.Orchestrator
	localizer *apperr.Localizer
}

func NewRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "studio",
		Short:         "Turn product photos into studio-quality marketing images",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("model", "", "generation model name")
	pf.String("locale", "", "message language (en, ko)")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.Int("concurrency", 0, "number of concurrent requests in a batch")
	pf.Int("max-retries", 0, "retries for temporarily unavailable service")
	pf.Int("rpm", 0, "requests per minute limit (0 = unlimited)")
	pf.Bool("compress", false, "re-encode inputs as JPEG before sending")
	pf.String("watermark-font", "", "TTF/OTF font file for watermarks (default Go Bold)")

	for key, flag := range map[string]string{
		config.KeyModel:             "model",
		config.KeyLocale:            "locale",
		config.KeyLogLevel:          "log-level",
		config.KeyBatchConcurrency:  "concurrency",
		config.KeyMaxRetries:        "max-retries",
		config.KeyRequestsPerMinute: "rpm",
		config.KeyCompressInput:     "compress",
		config.KeyWatermarkFont:     "watermark-font",
	} {
		_ = v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(newGenerateCmd(v), newBatchCmd(v))
	return root
}

// newApp は設定を読み込み、ロガーと各コンポーネントを組み立てます。
func newApp(v *viper.Viper) (*app, error) {
	// .env は任意
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf(".env の読み込みに失敗しました: %w", err)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	level, _ := config.ParseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	gen, err := generator.NewClient(generator.NewGenAIModel(cfg.APIKey), generator.Options{
		APIKey:             cfg.APIKey,
		Model:              cfg.Model,
		CompressInput:      cfg.CompressInput,
		CompressionQuality: cfg.CompressionQuality,
	})
	if err != nil {
		return nil, err
	}

	compositor, err := loadCompositor(cfg.WatermarkFont)
	if err != nil {
		return nil, err
	}

	orch, err := orchestrator.New(gen, orchestrator.Options{
		Concurrency:       cfg.BatchConcurrency,
		MaxRetries:        cfg.MaxRetries,
		RetryInterval:     cfg.RetryInterval,
		RequestsPerMinute: cfg.RequestsPerMinute,
		Compositor:        compositor,
	})
	if err != nil {
		return nil, err
	}

	cache := expirable.NewLRU[string, []byte](cfg.CacheSize, nil, cfg.CacheTTL)
	loader := source.NewLoader(httpkit.New(cfg.HTTPTimeout), cache)

	return &app{
		cfg:       cfg,
		loader:    loader,
		orch:      orch,
		localizer: apperr.NewLocalizer(cfg.Locale),
	}, nil
}

// loadCompositor は透かしフォントを読み込みます。path が空なら Go Bold です。
func loadCompositor(path string) (*imgutil.Compositor, error) {
	if path == "" {
		return imgutil.DefaultCompositor(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("透かしフォント %s を読み込めません: %w", path, err)
	}
	return imgutil.NewCompositor(data)
}

// explain は分類済みのエラーを利用者向けの文言にして返します。詳細はログに残します。
// ファイルの読み書きなど分類できないエラーは、原因が分かるようにそのまま返します。
func (a *app) explain(err error) error {
	slog.Debug("operation failed", "error", err)
	if apperr.KindOf(apperr.Classify(err)) == apperr.KindUnknown {
		return err
	}
	return errors.New(a.localizer.Message(err))
}
