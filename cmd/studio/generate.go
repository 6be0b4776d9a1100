package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shouni/gemini-product-studio/pkg/domain"
)

func newGenerateCmd(v *viper.Viper) *cobra.Command {
	var (
		sf         settingsFlags
		modelImage string
		edits      []string
		outDir     string
	)

	cmd := &cobra.Command{
		Use:   "generate <image>",
		Short: "Generate a studio photo from one product image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := sf.settings()
			if err != nil {
				return err
			}
			a, err := newApp(v)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			src, err := a.loader.Load(ctx, args[0])
			if err != nil {
				return a.explain(err)
			}
			var model *domain.SourceImage
			if modelImage != "" {
				if model, err = a.loader.Load(ctx, modelImage); err != nil {
					return a.explain(err)
				}
			}

			if _, err := a.orch.Generate(ctx, *src, settings, model); err != nil {
				return a.explain(err)
			}
			for _, edit := range edits {
				if _, err := a.orch.Refine(ctx, src.ID, edit); err != nil {
					return a.explain(err)
				}
				slog.Info("編集を適用しました", "instruction", edit)
			}

			path, p, err := writePreview(a.orch, newOutputNamer(outDir), *src, settings)
			if err != nil {
				return a.explain(err)
			}
			if p.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", a.localizer.Message(p.Err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	sf.register(cmd.Flags())
	cmd.Flags().StringVar(&modelImage, "model-image", "", "photo of a person to compose with the product")
	cmd.Flags().StringArrayVar(&edits, "edit", nil, "edit instruction applied after generation (repeatable)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}
