package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reclamos/internal/config"
	"reclamos/internal/render"
	"reclamos/internal/storage"
)

var latestDetail bool

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the most recent complaint",
	Long: `Reads the configured record store and prints the most recent complaint
the way the bot sends it. With --detail every field is printed, including
ServiceNumber.`,
	RunE: runLatest,
}

func init() {
	latestCmd.Flags().BoolVar(&latestDetail, "detail", false, "print every field of the complaint")
}

func runLatest(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	store, err := storage.Open(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	renderer := render.NewRenderer(store)

	var lines []string
	if latestDetail {
		lines = renderer.RenderLatestDetail(cmd.Context())
	} else {
		lines = renderer.RenderLatest(cmd.Context())
	}

	out := cmd.OutOrStdout()
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	return nil
}
