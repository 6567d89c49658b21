package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-font-manager/internal/config"
	"github.com/deploymenttheory/go-font-manager/internal/logger"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Get and set configuration values",
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseDir, err := config.DefaultBaseDir()
			if err != nil {
				return err
			}
			if err := config.Set(baseDir, args[0], args[1]); err != nil {
				return err
			}
			logger.Successf("Set %s", args[0])
			return nil
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Show a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseDir, err := config.DefaultBaseDir()
			if err != nil {
				return err
			}
			value, err := config.Get(baseDir, args[0])
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		},
	}

	cmd.AddCommand(setCmd, getCmd)
	return cmd
}
