package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/bilgisen/autostudio/internal/models"
	"github.com/spf13/cobra"
)

func newRootCmd(open opener) *cobra.Command {
	var e *env

	root := &cobra.Command{
		Use:          "studioctl",
		Short:        "Administer an AutoStudio instance",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			e, err = open(cmd.Context())
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if e == nil || e.close == nil {
				return nil
			}
			return e.close()
		},
	}

	root.AddCommand(
		newMembersCmd(func() *env { return e }),
		newConfigCmd(func() *env { return e }),
		newTrendsCmd(func() *env { return e }),
	)
	return root
}

func newMembersCmd(get func() *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage dashboard members",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List members with their access keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tSTATUS\tACCESS KEY")
			for _, m := range get().members.List(cmd.Context()) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Email, m.Role, m.Status, m.AccessKey)
			}
			return w.Flush()
		},
	}

	var name, email, role string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a member and print the generated access key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := get().members.Add(cmd.Context(), name, email, models.Role(role))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) with access key %s\n", m.Name, m.Role, m.AccessKey)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "member name")
	add.Flags().StringVar(&email, "email", "", "member email")
	add.Flags().StringVar(&role, "role", string(models.RoleMember), "Admin or Member")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := get().members.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Suspend or reactivate a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := get().members.ToggleStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", m.Name, m.Status)
			return nil
		},
	}

	cmd.AddCommand(list, add, del, toggle)
	return cmd
}

func newConfigCmd(get func() *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or change the system configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the system configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(get().state.SystemConfig())
		},
	}

	private := &cobra.Command{
		Use:       "private on|off",
		Short:     "Turn private mode on or off",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			cfg := e.state.SystemConfig()
			cfg.IsPrivateMode = args[0] == "on"
			e.state.UpdateSystemConfig(cmd.Context(), cfg)
			fmt.Fprintf(cmd.OutOrStdout(), "Private mode %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(show, private)
	return cmd
}

func newTrendsCmd(get func() *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Inspect trending searches",
	}

	var geo string
	daily := &cobra.Command{
		Use:   "daily",
		Short: "List today's trending searches from the public feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			trends, err := get().feed.DailyTrends(cmd.Context(), geo)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TOPIC\tVOLUME\tREGION")
			for _, t := range trends {
				fmt.Fprintf(w, "%s\t%s\t%s\n", t.Topic, t.Volume, t.Region)
			}
			return w.Flush()
		},
	}
	daily.Flags().StringVar(&geo, "geo", "US", "country code, or GLOBAL for all regions")

	cmd.AddCommand(daily)
	return cmd
}
