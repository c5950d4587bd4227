// Package output provides functions to print messages with optional color formatting
package output

import (
	"fmt"
	"strings"

	"github.com/handoff-dev/handoff/domain"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

const (
	Plain   = color.FgWhite
	Success = color.FgGreen
	Warning = color.FgYellow
	Error   = color.FgRed
)

var maybeColorize func(kind color.Attribute, tmpl string, a ...any) string

// InitColors sets up color functions based on environment
func InitColors(isColorDisabled bool) {
	if color.NoColor || isColorDisabled {
		maybeColorize = func(kind color.Attribute, tmpl string, a ...any) string {
			return fmt.Sprintf(tmpl, a...)
		}
	} else {
		maybeColorize = func(kind color.Attribute, tmpl string, a ...any) string {
			return color.New(kind).SprintfFunc()(tmpl, a...)
		}
	}
}

// PrintMessage formats a message with color (if enabled) and returns it
func PrintMessage(kind color.Attribute, tmpl string, a ...any) string {
	if maybeColorize == nil || kind == Plain {
		return fmt.Sprintf(tmpl+"\n", a...)
	}
	return fmt.Sprintln(maybeColorize(kind, tmpl, a...))
}

// FprintPlain writes a plain formatted line to the command's output
func FprintPlain(cmd *cobra.Command, tmpl string, a ...any) error {
	_, err := fmt.Fprint(cmd.OutOrStdout(), PrintMessage(Plain, tmpl, a...))
	return err
}

func PrintTable(header []string, data [][]string) (string, error) {
	buf := strings.Builder{}

	table := tablewriter.NewTable(
		&buf,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines: tw.Lines{
					ShowHeaderLine: tw.Off,
				},
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{PerColumn: []tw.Align{tw.AlignRight, tw.AlignLeft}},
			},
		}))

	if len(header) > 0 {
		table.Header(header)
	}

	if err := table.Bulk(data); err != nil {
		return "", fmt.Errorf("bulk adding data to table: %w", err)
	}

	if err := table.Render(); err != nil {
		return "", fmt.Errorf("rendering table: %w", err)
	}

	return buf.String(), nil
}

// PrintProjectList renders the project list table
func PrintProjectList(projects []*domain.Project) (string, error) {
	if len(projects) == 0 {
		return PrintMessage(Plain, "No projects found."), nil
	}

	header := []string{
		"ID",
		"Title",
		"Client",
		"Status",
		"Progress",
		"Created At",
	}

	data := make([][]string, len(projects))
	for i, p := range projects {
		data[i] = []string{
			p.ID.String(),
			p.Title,
			p.ClientID.String(),
			p.Status.String(),
			fmt.Sprintf("%d%%", p.Progress),
			p.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}

	table, err := PrintTable(header, data)
	if err != nil {
		return "", fmt.Errorf("printing project list table: %w", err)
	}
	return table, nil
}

// PrintProjectDetails renders one project with its step sequence
func PrintProjectDetails(project *domain.Project) (string, error) {
	data := [][]string{
		{"ID", project.ID.String()},
		{"Title", project.Title},
		{"Client", project.ClientID.String()},
		{"Status", project.Status.String()},
		{"Progress", fmt.Sprintf("%d%%", project.Progress)},
		{"Start Date", project.StartDate.Format("2006-01-02")},
	}
	if project.EndDate != nil {
		data = append(data, []string{"End Date", project.EndDate.Format("2006-01-02")})
	}
	data = append(data,
		[]string{"Created At", project.CreatedAt.Format("2006-01-02 15:04:05")},
		[]string{"Updated At", project.UpdatedAt.Format("2006-01-02 15:04:05")},
	)

	details, err := PrintTable([]string{}, data)
	if err != nil {
		return "", fmt.Errorf("printing project details table: %w", err)
	}

	if len(project.Steps) == 0 {
		return details, nil
	}

	stepData := make([][]string, len(project.Steps))
	for i, s := range project.Steps {
		status := s.Status.String()
		if s.Status == domain.StepStatusCurrent {
			status = maybeColorizeStatus(status)
		}
		stepData[i] = []string{
			fmt.Sprintf("%d", s.OrderIndex+1),
			s.Title,
			status,
		}
	}

	steps, err := PrintTable([]string{"#", "Step", "Status"}, stepData)
	if err != nil {
		return "", fmt.Errorf("printing project steps table: %w", err)
	}

	return details + "\n" + steps, nil
}

func maybeColorizeStatus(status string) string {
	if maybeColorize == nil {
		return status
	}
	return maybeColorize(Success, "%s", status)
}

// CLI flag for disabling colored output

// NoColor is a flag for disabling colored terminal output
var NoColor = &noColorFlag{}

type noColorFlag struct {
	value bool
	set   bool
}

func (f *noColorFlag) Set(value string) error {
	f.value = value == "true"
	f.set = true
	return nil
}

func (f *noColorFlag) String() string {
	if f.value {
		return "true"
	}
	return "false"
}

func (f *noColorFlag) Type() string {
	return "bool"
}

// IsSet returns true if the flag was explicitly set via command line
func (f *noColorFlag) IsSet() bool {
	return f.set
}
