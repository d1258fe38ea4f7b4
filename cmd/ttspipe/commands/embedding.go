package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/haivivi/ttspipe/pkg/storage"
	"github.com/haivivi/ttspipe/pkg/xvector"
)

var (
	embeddingDataset string
	embeddingSpeaker string
)

var embeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Inspect and seed speaker-embedding datasets",
}

// openDataset builds a dataset reader from the configured dataset
// directory, with an on-disk record cache when one is configured.
func openDataset() (*xvector.Dataset, func(), error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatasetDir == "" {
		return nil, nil, fmt.Errorf("dataset_dir not configured; run 'ttspipe config set dataset_dir <dir>'")
	}
	store, err := storage.NewLocal(cfg.DatasetDir)
	if err != nil {
		return nil, nil, err
	}

	closer := func() {}
	var opts []xvector.DatasetOption
	if cfg.CacheDir != "" {
		cache, err := xvector.NewBadger(xvector.BadgerOptions{Dir: cfg.CacheDir})
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, xvector.WithCache(cache))
		closer = func() { cache.Close() }
	}
	return xvector.NewDataset(embeddingDataset, store, opts...), closer, nil
}

var embeddingInfoCmd = &cobra.Command{
	Use:   "info <index>",
	Short: "Show one embedding record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid record index %q", args[0])
		}

		ds, closer, err := openDataset()
		if err != nil {
			return err
		}
		defer closer()

		rec, err := ds.Record(cmd.Context(), index)
		if err != nil {
			return err
		}

		fmt.Println(labelStyle.Render(ds.Name()) + dimStyle.Render(fmt.Sprintf("[%d]", index)))
		printField("speaker", rec.Speaker)
		printField("dims", strconv.Itoa(len(rec.XVector)))
		head := rec.XVector
		if len(head) > 8 {
			head = head[:8]
		}
		printField("head", fmt.Sprintf("%.4f", head))
		return nil
	},
}

var embeddingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the record indices of a dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, closer, err := openDataset()
		if err != nil {
			return err
		}
		defer closer()

		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		store, err := storage.NewLocal(cfg.DatasetDir)
		if err != nil {
			return err
		}
		paths, err := store.List(cmd.Context(), path.Join(ds.Name(), "records"))
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			fmt.Println(dimStyle.Render("(no records)"))
			return nil
		}
		for _, p := range paths {
			fmt.Println(path.Base(p))
		}
		return nil
	},
}

var embeddingPutCmd = &cobra.Command{
	Use:   "put <index> <vector.json>",
	Short: "Seed one embedding record from a JSON array of floats",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid record index %q", args[0])
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		var vec []float32
		if err := json.Unmarshal(data, &vec); err != nil {
			return fmt.Errorf("parse %s: %w", args[1], err)
		}
		if len(vec) == 0 {
			return fmt.Errorf("empty vector in %s", args[1])
		}

		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if cfg.DatasetDir == "" {
			return fmt.Errorf("dataset_dir not configured; run 'ttspipe config set dataset_dir <dir>'")
		}
		store, err := storage.NewLocal(cfg.DatasetDir)
		if err != nil {
			return err
		}

		rec := &xvector.Record{Speaker: embeddingSpeaker, XVector: vec}
		if err := xvector.WriteRecord(cmd.Context(), store, embeddingDataset, index, rec); err != nil {
			return err
		}
		fmt.Printf("wrote %s[%d] (%d dims)\n", embeddingDataset, index, len(vec))
		return nil
	},
}

func init() {
	embeddingCmd.PersistentFlags().StringVar(&embeddingDataset, "dataset",
		xvector.DatasetCMUArctic, "dataset identifier")
	embeddingPutCmd.Flags().StringVar(&embeddingSpeaker, "speaker", "", "speaker label")

	embeddingCmd.AddCommand(embeddingInfoCmd)
	embeddingCmd.AddCommand(embeddingListCmd)
	embeddingCmd.AddCommand(embeddingPutCmd)
	rootCmd.AddCommand(embeddingCmd)
}
