package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vigilo-home/vigilo/cli/pkg/output"
)

var installationsCmd = &cobra.Command{
	Use:     "installations",
	Aliases: []string{"inst"},
	Short:   "Installation commands",
	Long:    "List installations and inspect their services and devices",
}

var installationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installations",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		list, err := app.installs.List(cmd.Context())
		if err != nil {
			return err
		}

		if outputFormat(cmd) == "json" {
			return output.JSON(list)
		}

		table := output.NewTable([]string{"NUMINST", "ALIAS", "PANEL", "TYPE", "CITY"})
		for _, inst := range list {
			table.AddRow([]string{inst.NumInst, inst.Alias, inst.Panel, inst.Type, inst.City})
		}
		table.Render()
		return nil
	},
}

var installationsServicesCmd = &cobra.Command{
	Use:   "services",
	Short: "Show installation services",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		id, err := app.installationID(cmd)
		if err != nil {
			return err
		}

		refresh, _ := cmd.Flags().GetBool("refresh")
		svc, err := app.installs.Services(cmd.Context(), id, refresh)
		if err != nil {
			return err
		}

		if outputFormat(cmd) == "json" {
			return output.JSON(svc)
		}

		output.Info("Installation %s (%s), panel %s, status %s", svc.NumInst, svc.Alias, svc.Panel, svc.Status)
		table := output.NewTable([]string{"ID", "ACTIVE", "VISIBLE", "REQUEST"})
		for _, s := range svc.Services {
			table.AddRow([]string{
				strconv.Itoa(s.IDService),
				strconv.FormatBool(s.Active),
				strconv.FormatBool(s.Visible),
				s.Request,
			})
		}
		table.Render()
		return nil
	},
}

var installationsDevicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List installation devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		id, err := app.installationID(cmd)
		if err != nil {
			return err
		}

		devices, err := app.installs.Devices(cmd.Context(), id)
		if err != nil {
			return err
		}

		if outputFormat(cmd) == "json" {
			return output.JSON(devices)
		}

		table := output.NewTable([]string{"ID", "CODE", "NAME", "TYPE", "ACTIVE"})
		for _, d := range devices {
			table.AddRow([]string{d.ID, d.Code, d.Name, d.Type, strconv.FormatBool(d.IsActive)})
		}
		table.Render()
		return nil
	},
}

var installationsUseCmd = &cobra.Command{
	Use:   "use <numinst>",
	Short: "Set the default installation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		app.profile.DefaultInstallation = args[0]
		if err := app.profile.Save(app.files.Dir()); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}

		output.Success("Default installation set to %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installationsCmd)
	installationsCmd.AddCommand(installationsListCmd)
	installationsCmd.AddCommand(installationsServicesCmd)
	installationsCmd.AddCommand(installationsDevicesCmd)
	installationsCmd.AddCommand(installationsUseCmd)

	installationsServicesCmd.Flags().Bool("refresh", false, "bypass the cache")
}
