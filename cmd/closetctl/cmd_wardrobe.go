package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/closetpanel/closetpanel/internal/application"
	"github.com/closetpanel/closetpanel/internal/domain/model"
)

var listCategory string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the cached wardrobe",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the wardrobe from the backend",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>...",
	Short: "Classify garment photos",
	Long: `Upload one or more garment photos for classification. Images are
resized and recompressed locally before upload.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	listCmd.Flags().StringVar(&listCategory, "category", "", "filter by category (top, bottom, dress, outerwear, shoes, accessory)")
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	var items []model.ClothingItem
	if listCategory != "" {
		cat, ok := model.ParseCategory(listCategory)
		if !ok {
			return fmt.Errorf("unknown category %q", listCategory)
		}
		items, err = a.wardrobeSvc.ListByCategory(cmd.Context(), cat)
	} else {
		items, err = a.wardrobeSvc.List(cmd.Context())
	}
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tCOLOR\tNAME\tTAGS")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			item.RemoteID, item.Category, item.Color, item.Name, strings.Join(item.Tags, ","))
	}
	return tw.Flush()
}

func runSync(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.wardrobeSvc.SyncOnce(cmd.Context()); err != nil {
		return err
	}

	items, err := a.wardrobeSvc.List(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Synced %d items\n", len(items))
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	uploads := make([]application.Upload, 0, len(args))
	files := make([]*os.File, 0, len(args))
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		files = append(files, f)
		uploads = append(uploads, application.Upload{Filename: filepath.Base(path), Data: f})
	}

	results := a.wardrobeSvc.AnalyzeBatch(cmd.Context(), uploads)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tCATEGORY\tCOLOR\tTAGS")
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(tw, "%s\terror: %v\t\t\n", res.Filename, res.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			res.Filename, res.Analysis.Category, res.Analysis.Color, strings.Join(res.Analysis.Tags, ","))
	}
	return tw.Flush()
}
