package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewStatusCmd создаёт группу команд для просмотра состояния устройства.
func NewStatusCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Inspect device state",
	}

	cmd.AddCommand(
		newStatusActiveCmd(clientFn, outputFn),
		newStatusLogCmd(clientFn, outputFn),
	)

	return cmd
}

func newStatusActiveCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "active",
		Short: "Show the currently active rotation",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			active, err := client.GetActive(at)
			if err != nil {
				return err
			}

			if active.Rotation == nil {
				out.Success("No active rotation at " + active.At)
				out.Print([]string{"NAME", "WINDOW", "PLUGINS"}, nil, active)
				return nil
			}

			r := active.Rotation
			out.Print(
				[]string{"NAME", "WINDOW", "PLUGINS", "CURSOR"},
				[][]string{{
					r.Name,
					formatWindow(r.StartTime, r.EndTime),
					strconv.Itoa(len(r.Plugins)),
					formatCursor(r.Cursor),
				}},
				active,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Resolve for a specific moment (RFC3339)")

	return cmd
}

func newStatusLogCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var limit int
	var pluginID string
	var instance string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent refresh log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			records, err := client.ListRefreshLog(limit, pluginID, instance)
			if err != nil {
				return err
			}

			headers := []string{"TIME", "TYPE", "PLUGIN_ID", "INSTANCE", "ROTATION", "HASH"}
			rows := make([][]string, len(records))
			for i, rec := range records {
				rows[i] = []string{
					rec.RefreshTime, rec.RefreshType, rec.PluginID,
					rec.PluginInstance, rec.Playlist, shortHash(rec.ImageHash),
				}
			}

			out.Print(headers, rows, records)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries")
	cmd.Flags().StringVar(&pluginID, "plugin-id", "", "Only the latest entry of this plugin (with --instance)")
	cmd.Flags().StringVar(&instance, "instance", "", "Instance name for --plugin-id")

	return cmd
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
