package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stride-cli/stride/internal/signals"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Ask a running stride session to stop cleanly",
	Long: `Request a clean stop of the stride run in this repository.

Items already in flight finish; nothing new is dispatched. The request
is delivered through a signal file under .stride/signals, so it works
from any terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		w, err := signals.NewWatcher(cwd)
		if err != nil {
			return err
		}
		defer w.Close()
		if err := w.RequestStop(); err != nil {
			return fmt.Errorf("writing stop signal: %w", err)
		}
		fmt.Println("stop requested: the run will finish in-flight items and halt")
		return nil
	},
}
