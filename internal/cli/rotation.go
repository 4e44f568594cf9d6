package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewRotationCmd создаёт группу команд для управления ротациями.
func NewRotationCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rotation",
		Short: "Manage rotations",
	}

	cmd.AddCommand(
		newRotationListCmd(clientFn, outputFn),
		newRotationCreateCmd(clientFn, outputFn),
		newRotationShowCmd(clientFn, outputFn),
		newRotationUpdateCmd(clientFn, outputFn),
		newRotationDeleteCmd(clientFn, outputFn),
	)

	return cmd
}

func newRotationListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rotations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			rotations, err := client.ListRotations()
			if err != nil {
				return err
			}

			headers := []string{"NAME", "WINDOW", "PLUGINS", "CURSOR"}
			rows := make([][]string, len(rotations))
			for i, r := range rotations {
				rows[i] = []string{
					r.Name,
					formatWindow(r.StartTime, r.EndTime),
					strconv.Itoa(len(r.Plugins)),
					formatCursor(r.Cursor),
				}
			}

			out.Print(headers, rows, rotations)
			return nil
		},
	}
}

func newRotationCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var startTime string
	var endTime string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a rotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			rotation, err := client.CreateRotation(CreateRotationRequest{
				Name:      args[0],
				StartTime: startTime,
				EndTime:   endTime,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Rotation created: %s", rotation.Name))
			out.Print(
				[]string{"NAME", "WINDOW", "PLUGINS"},
				[][]string{{
					rotation.Name,
					formatWindow(rotation.StartTime, rotation.EndTime),
					strconv.Itoa(len(rotation.Plugins)),
				}},
				rotation,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&startTime, "start", "", "Window start, HH:MM (default 00:00)")
	cmd.Flags().StringVar(&endTime, "end", "", "Window end, HH:MM or 24:00 (default 24:00)")

	return cmd
}

func newRotationShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show a rotation and its plugins",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			rotation, err := client.GetRotation(args[0])
			if err != nil {
				return err
			}

			headers := []string{"PLUGIN_ID", "INSTANCE", "INTERVAL", "SCHEDULED", "LAST_REFRESH"}
			rows := make([][]string, len(rotation.Plugins))
			for i, u := range rotation.Plugins {
				rows[i] = []string{
					u.PluginID,
					u.Name,
					formatInterval(u.Refresh.IntervalSec),
					u.Refresh.Scheduled,
					u.LatestRefresh,
				}
			}

			out.Success(fmt.Sprintf("Rotation %s (%s), cursor: %s",
				rotation.Name,
				formatWindow(rotation.StartTime, rotation.EndTime),
				formatCursor(rotation.Cursor)))
			out.Print(headers, rows, rotation)
			return nil
		},
	}
}

func newRotationUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var startTime string
	var endTime string

	cmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Update a rotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := UpdateRotationRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("start") {
				req.StartTime = &startTime
			}
			if cmd.Flags().Changed("end") {
				req.EndTime = &endTime
			}

			rotation, err := client.UpdateRotation(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Rotation updated: %s", rotation.Name))
			out.Print(
				[]string{"NAME", "WINDOW", "PLUGINS"},
				[][]string{{
					rotation.Name,
					formatWindow(rotation.StartTime, rotation.EndTime),
					strconv.Itoa(len(rotation.Plugins)),
				}},
				rotation,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New rotation name")
	cmd.Flags().StringVar(&startTime, "start", "", "Window start, HH:MM")
	cmd.Flags().StringVar(&endTime, "end", "", "Window end, HH:MM or 24:00")

	return cmd
}

func newRotationDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a rotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteRotation(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Rotation deleted: %s", args[0]))
			return nil
		},
	}
}

// --- Formatters ---

func formatWindow(start, end string) string {
	return start + "-" + end
}

func formatCursor(cursor *int) string {
	if cursor == nil {
		return "-"
	}
	return strconv.Itoa(*cursor)
}

func formatInterval(sec int) string {
	if sec <= 0 {
		return ""
	}
	return strconv.Itoa(sec) + "s"
}
