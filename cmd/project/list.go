package project

import (
	"github.com/handoff-dev/handoff/app"
	"github.com/handoff-dev/handoff/cmd/output"
	"github.com/handoff-dev/handoff/cmd/utils"
	"github.com/spf13/cobra"
)

func NewCmdProjectList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all delivery projects",
		Long: `Display all projects managed by Handoff.

Shows project information in a table format including:
- Project title and client
- Delivery status and overall progress
- Creation timestamp`,
		Run: func(cmd *cobra.Command, args []string) {
			projects, err := app.GetProjectService().List()
			if err != nil {
				utils.HandleCommandError("listing projects", err)
				return
			}

			out, err := output.PrintProjectList(projects)
			if err != nil {
				utils.HandleCommandError("printing project list table", err)
				return
			}

			if err := output.FprintPlain(cmd, "%s", out); err != nil {
				utils.HandleCommandError("printing project list output", err)
			}
		},
	}
}
