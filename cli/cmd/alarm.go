package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vigilo-home/vigilo/alarm"
	"github.com/vigilo-home/vigilo/cli/pkg/output"
)

var alarmCmd = &cobra.Command{
	Use:   "alarm",
	Short: "Alarm panel commands",
	Long:  "Arm, disarm and read the state of the alarm panel",
}

var armModes = map[string]alarm.Mode{
	"away":  alarm.ModeAway,
	"home":  alarm.ModeHome,
	"night": alarm.ModeNight,
}

var alarmArmCmd = &cobra.Command{
	Use:   "arm",
	Short: "Arm the panel",
	Long: `Arm the panel in one of three modes:

  away   full interior alarm
  home   perimeter only
  night  interior night zone`,
	RunE: func(cmd *cobra.Command, args []string) error {
		modeName, _ := cmd.Flags().GetString("mode")
		mode, ok := armModes[modeName]
		if !ok {
			return fmt.Errorf("unknown mode %q (use away, home or night)", modeName)
		}

		app, err := newApp()
		if err != nil {
			return err
		}

		id, err := app.installationID(cmd)
		if err != nil {
			return err
		}

		output.Info("Arming installation %s (%s)...", id, modeName)
		result, err := app.alarm.Arm(cmd.Context(), id, mode)
		if err != nil {
			return err
		}

		output.Success("Panel armed after %d checks", result.Attempts)
		return nil
	},
}

var alarmDisarmCmd = &cobra.Command{
	Use:   "disarm",
	Short: "Disarm the panel",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		id, err := app.installationID(cmd)
		if err != nil {
			return err
		}

		output.Info("Disarming installation %s...", id)
		result, err := app.alarm.Disarm(cmd.Context(), id)
		if err != nil {
			return err
		}

		output.Success("Panel disarmed after %d checks", result.Attempts)
		return nil
	},
}

var alarmStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Read the alarm state",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		id, err := app.installationID(cmd)
		if err != nil {
			return err
		}

		status, err := app.alarm.Status(cmd.Context(), id)
		if err != nil {
			return err
		}

		if outputFormat(cmd) == "json" {
			return output.JSON(status)
		}

		if !status.Flags.Armed() {
			output.Info("Alarm is disarmed")
			return nil
		}

		output.Info("Panel message: %s", status.Message)
		table := output.NewTable([]string{"ZONE", "ARMED"})
		table.AddRow([]string{"interior day", fmt.Sprintf("%v", status.Flags.InternalDay)})
		table.AddRow([]string{"interior night", fmt.Sprintf("%v", status.Flags.InternalNight)})
		table.AddRow([]string{"interior total", fmt.Sprintf("%v", status.Flags.InternalTotal)})
		table.AddRow([]string{"perimeter", fmt.Sprintf("%v", status.Flags.External)})
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(alarmCmd)
	alarmCmd.AddCommand(alarmArmCmd)
	alarmCmd.AddCommand(alarmDisarmCmd)
	alarmCmd.AddCommand(alarmStatusCmd)

	alarmArmCmd.Flags().StringP("mode", "m", "away", "arm mode: away, home, night")
}
