package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shouni/gemini-product-studio/pkg/apperr"
	"github.com/shouni/gemini-product-studio/pkg/domain"
	"github.com/shouni/gemini-product-studio/pkg/orchestrator"
)

func newBatchCmd(v *viper.Viper) *cobra.Command {
	var (
		sf         settingsFlags
		modelImage string
		outDir     string
	)

	cmd := &cobra.Command{
		Use:   "batch <image>...",
		Short: "Generate studio photos for several product images in order",
		Args:  cobra.MinimumNArgs(1),
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

			sources, err := a.loader.LoadAll(ctx, args)
			if err != nil {
				return a.explain(err)
			}
			var model *domain.SourceImage
			if modelImage != "" {
				if model, err = a.loader.Load(ctx, modelImage); err != nil {
					return a.explain(err)
				}
			}

			out := cmd.OutOrStdout()
			rep, err := a.orch.Batch(ctx, sources, settings, model, func(p domain.BatchProgress) {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d]\n", p.Completed, p.Total)
			})
			if err != nil {
				return a.explain(err)
			}

			paths := make(map[string]string, len(sources))
			names := newOutputNamer(outDir)
			for _, src := range sources {
				if _, ok := a.orch.Artifact(src.ID); !ok {
					continue
				}
				path, _, err := writePreview(a.orch, names, src, settings)
				if err != nil {
					return a.explain(err)
				}
				paths[src.ID] = path
			}

			renderReport(out, a.localizer, sources, rep, paths)
			if rep.Halted {
				return a.explain(rep.HaltError())
			}
			return nil
		},
	}

	sf.register(cmd.Flags())
	cmd.Flags().StringVar(&modelImage, "model-image", "", "photo of a person to compose with the products")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

// renderReport はバッチ結果を表にして出力します。
func renderReport(w io.Writer, l *apperr.Localizer, sources []domain.SourceImage, rep *orchestrator.BatchReport, paths map[string]string) {
	names := make(map[string]string, len(sources))
	for _, s := range sources {
		names[s.ID] = s.Name
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"IMAGE", "STATUS", "DETAIL"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	for _, it := range rep.Items {
		detail := paths[it.SourceID]
		if it.Status == orchestrator.ItemFailed {
			detail = l.Message(it.Err)
		}
		table.Append([]string{names[it.SourceID], it.Status.String(), detail})
	}
	table.Render()

	fmt.Fprintf(w, "\n%d succeeded, %d failed, %d not attempted (%d/%d)\n",
		rep.Succeeded(), rep.Failed(), rep.NotAttempted(), rep.Progress.Completed, rep.Progress.Total)
}
