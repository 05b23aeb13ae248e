package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vigilo-home/vigilo/cli/pkg/output"
)

var camerasCmd = &cobra.Command{
	Use:   "cameras",
	Short: "Camera commands",
}

var camerasRequestCmd = &cobra.Command{
	Use:   "request",
	Short: "Request fresh camera images",
	Long:  "Ask the given camera devices for a new capture and wait for the panel to confirm",
	RunE: func(cmd *cobra.Command, args []string) error {
		devices, _ := cmd.Flags().GetIntSlice("devices")

		app, err := newApp()
		if err != nil {
			return err
		}

		id, err := app.installationID(cmd)
		if err != nil {
			return err
		}

		output.Info("Requesting images from devices %v...", devices)
		result, err := app.camera.RequestImages(cmd.Context(), id, devices)
		if err != nil {
			return err
		}

		output.Success("Images captured after %d checks (reference %s)", result.Attempts, result.ReferenceID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(camerasCmd)
	camerasCmd.AddCommand(camerasRequestCmd)

	camerasRequestCmd.Flags().IntSliceP("devices", "d", nil, "camera device ids")
	camerasRequestCmd.MarkFlagRequired("devices")
}
