package main

import (
	"fmt"

	"github.com/dusxproductions/kinect2share/control"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect or reset the settings file",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := control.Load(settingsPath)
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(s)
		if err != nil {
			return fmt.Errorf("could not encode settings: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Overwrite the settings file with the defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := control.Save(settingsPath, control.DefaultSettings()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "settings reset in %s\n", settingsPath)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}
