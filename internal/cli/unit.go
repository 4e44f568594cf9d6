package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewPluginCmd создаёт группу команд для управления плагинами в ротациях.
func NewPluginCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugin",
		Short: "Manage plugin instances inside rotations",
	}

	cmd.AddCommand(
		newPluginAddCmd(clientFn, outputFn),
		newPluginUpdateCmd(clientFn, outputFn),
		newPluginRemoveCmd(clientFn, outputFn),
		newPluginRefreshCmd(clientFn, outputFn),
	)

	return cmd
}

func newPluginAddCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var intervalSec int
	var scheduled string
	var settings []string

	cmd := &cobra.Command{
		Use:   "add ROTATION PLUGIN_ID",
		Short: "Add a plugin instance to a rotation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := CreateUnitRequest{
				PluginID: args[1],
				Name:     name,
				Refresh: RefreshPolicyDTO{
					IntervalSec: intervalSec,
					Scheduled:   scheduled,
				},
			}

			if len(settings) > 0 {
				parsed, err := parseSettings(settings)
				if err != nil {
					return err
				}
				req.Settings = parsed
			}

			unit, err := client.AddUnit(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Plugin added: %s/%s", unit.PluginID, unit.Name))
			out.Print(
				[]string{"PLUGIN_ID", "INSTANCE", "INTERVAL", "SCHEDULED"},
				[][]string{{
					unit.PluginID, unit.Name,
					formatInterval(unit.Refresh.IntervalSec), unit.Refresh.Scheduled,
				}},
				unit,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Instance name (required)")
	cmd.Flags().IntVar(&intervalSec, "interval", 0, "Refresh interval in seconds")
	cmd.Flags().StringVar(&scheduled, "scheduled", "", "Daily refresh time, HH:MM")
	cmd.Flags().StringArrayVar(&settings, "set", nil, "Plugin setting KEY=VALUE (repeatable)")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newPluginUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var intervalSec int
	var scheduled string
	var settings []string

	cmd := &cobra.Command{
		Use:   "update ROTATION PLUGIN_ID INSTANCE",
		Short: "Update a plugin instance",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := UpdateUnitRequest{}
			if cmd.Flags().Changed("interval") || cmd.Flags().Changed("scheduled") {
				req.Refresh = &RefreshPolicyDTO{
					IntervalSec: intervalSec,
					Scheduled:   scheduled,
				}
			}
			if len(settings) > 0 {
				parsed, err := parseSettings(settings)
				if err != nil {
					return err
				}
				req.Settings = parsed
			}

			unit, err := client.UpdateUnit(args[0], args[1], args[2], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Plugin updated: %s/%s", unit.PluginID, unit.Name))
			out.Print(
				[]string{"PLUGIN_ID", "INSTANCE", "INTERVAL", "SCHEDULED"},
				[][]string{{
					unit.PluginID, unit.Name,
					formatInterval(unit.Refresh.IntervalSec), unit.Refresh.Scheduled,
				}},
				unit,
			)
			return nil
		},
	}

	cmd.Flags().IntVar(&intervalSec, "interval", 0, "Refresh interval in seconds")
	cmd.Flags().StringVar(&scheduled, "scheduled", "", "Daily refresh time, HH:MM")
	cmd.Flags().StringArrayVar(&settings, "set", nil, "Plugin setting KEY=VALUE (repeatable)")

	return cmd
}

func newPluginRemoveCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ROTATION PLUGIN_ID INSTANCE",
		Short: "Remove a plugin instance from a rotation",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.RemoveUnit(args[0], args[1], args[2]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Plugin removed: %s/%s", args[1], args[2]))
			return nil
		},
	}
}

func newPluginRefreshCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh ROTATION PLUGIN_ID INSTANCE",
		Short: "Request an out-of-band refresh of a plugin instance",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			job, err := client.RefreshUnit(args[0], args[1], args[2])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Refresh requested: %s", job.JobID))
			out.Print([]string{"JOB_ID"}, [][]string{{job.JobID}}, job)
			return nil
		},
	}
}

func parseSettings(kvs []string) (map[string]any, error) {
	settings := make(map[string]any, len(kvs))
	for _, kv := range kvs {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid setting format %q, expected KEY=VALUE", kv)
		}
		settings[parts[0]] = parts[1]
	}
	return settings, nil
}
