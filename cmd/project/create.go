package project

import (
	"github.com/google/uuid"
	"github.com/handoff-dev/handoff/app"
	"github.com/handoff-dev/handoff/cmd/output"
	"github.com/handoff-dev/handoff/cmd/utils"
	"github.com/handoff-dev/handoff/services"
	"github.com/spf13/cobra"
)

func NewCmdProjectCreate() *cobra.Command {
	var (
		title    string
		clientID string
		steps    []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new delivery project",
		Long: `Create a project with its milestone sequence.

Steps are given in order with repeated --step flags; the first one starts
out as the current step.`,
		Run: func(cmd *cobra.Command, args []string) {
			client, err := uuid.Parse(clientID)
			if err != nil {
				utils.HandleInvalidUUID("creating project", clientID)
				return
			}

			input := services.CreateProjectInput{
				Title:    title,
				ClientID: client,
			}
			for _, s := range steps {
				input.Steps = append(input.Steps, services.StepSeed{Title: s})
			}

			project, err := app.GetProjectService().Create(input)
			if err != nil {
				utils.HandleCommandError("creating project", err, "title", title)
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

	cmd.Flags().StringVarP(&title, "title", "t", "", "Project title (required)")
	cmd.Flags().StringVar(&clientID, "client", "", "Client ID (required)")
	cmd.Flags().StringArrayVarP(&steps, "step", "s", nil, "Step title, repeatable, in order")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("client")

	return cmd
}
