// Package project implements the project CLI commands.
package project

import (
	"github.com/spf13/cobra"
)

func NewCmdProject() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage delivery projects",
	}

	cmd.AddCommand(NewCmdProjectList())
	cmd.AddCommand(NewCmdProjectShow())
	cmd.AddCommand(NewCmdProjectCreate())
	return cmd
}
