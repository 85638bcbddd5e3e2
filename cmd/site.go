package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/opx/internal/sitegen"
	"github.com/oakwood-commons/opx/internal/ui"
	"github.com/oakwood-commons/opx/pkg/logger"
)

var (
	siteOut   string
	siteTitle string
	sitePages string
	siteOpen  bool
)

var siteCmd = &cobra.Command{
	Use:   "site [file]",
	Short: "generate a static HTML reference site",
	Long: `site renders the dataset into a static HTML site: an index page with
the full instruction table, one page per category, and optional extra
markdown pages. The dataset source rules match the root command.`,
	Example: `
  opx site
  opx site tvm.yaml --out dist --title "TVM instructions"
  opx site --pages docs/ --open`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		lgr := logger.FromContext(rootCtx)

		ds, _, err := loadDataset(args, lgr)
		if err != nil {
			return err
		}

		err = sitegen.Generate(rootCtx, ds, sitegen.Options{
			OutDir:   siteOut,
			Title:    siteTitle,
			PagesDir: sitePages,
		})
		if err != nil {
			return err
		}

		index := filepath.Join(siteOut, "index.html")
		lgr.V(1).Info("site generated", "dir", siteOut, "records", len(ds.Records))
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", index)

		if siteOpen {
			abs, err := filepath.Abs(index)
			if err != nil {
				return err
			}
			return ui.OpenURL("file://" + abs)
		}
		return nil
	},
}

func init() { //nolint:gochecknoinits
	siteCmd.Flags().StringVar(&siteOut, "out", "site", "output directory")
	siteCmd.Flags().StringVar(&siteTitle, "title", "", "site title (default derives from the dataset name)")
	siteCmd.Flags().StringVar(&sitePages, "pages", "", "directory of extra markdown pages to render")
	siteCmd.Flags().BoolVar(&siteOpen, "open", false, "open the generated site in a browser")
}
