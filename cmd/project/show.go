package project

import (
	"github.com/google/uuid"
	"github.com/handoff-dev/handoff/app"
	"github.com/handoff-dev/handoff/cmd/output"
	"github.com/handoff-dev/handoff/cmd/utils"
	"github.com/spf13/cobra"
)

func NewCmdProjectShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project and its step sequence",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			projectID, err := uuid.Parse(args[0])
			if err != nil {
				utils.HandleInvalidUUID("showing project", args[0])
				return
			}

			project, err := app.GetProjectService().Get(projectID)
			if err != nil {
				utils.HandleCommandError("showing project", err, "project_id", projectID)
				return
			}

			out, err := output.PrintProjectDetails(project)
			if err != nil {
				utils.HandleCommandError("printing project details", err)
				return
			}

			if err := output.FprintPlain(cmd, "%s", out); err != nil {
				utils.HandleCommandError("printing project output", err)
			}
		},
	}
}
