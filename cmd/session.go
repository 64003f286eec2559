package cmd

import (
	"fmt"

	"dynoquery/models"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage sessions (table, region and credentials)",
	}

	var s models.Session
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a session in a group",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			if s.Region == "" {
				s.Region = a.config.AWSRegion
			}
			created, err := a.services.GetSessionService().CreateSession(cmd.Context(), &s)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), created.SessionID)
			return nil
		},
	}
	create.Flags().StringVar(&s.Name, "name", "", "session name")
	create.Flags().StringVar(&s.TableName, "table", "", "table name")
	create.Flags().StringVar(&s.Region, "region", "", "AWS region (default from config)")
	create.Flags().StringVar(&s.CredentialProfile, "profile", "", "AWS credential profile")
	create.Flags().StringVar(&s.SessionGroupID, "group", "", "session group id")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("table")
	_ = create.MarkFlagRequired("group")

	var (
		page, pageSize int
		search         string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List sessions by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			sessions, err := a.services.GetSessionService().ListSessions(cmd.Context(), page, pageSize, search)
			if err != nil {
				return err
			}
			return printSessions(cmd.OutOrStdout(), sessions)
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().IntVar(&pageSize, "page-size", 20, "entries per page")
	list.Flags().StringVar(&search, "search", "", "only names containing this text")

	var u struct{ name, table, region, profile, group string }
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the fields of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			var upd models.SessionUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				upd.Name = &u.name
			}
			if flags.Changed("table") {
				upd.TableName = &u.table
			}
			if flags.Changed("region") {
				upd.Region = &u.region
			}
			if flags.Changed("profile") {
				upd.CredentialProfile = &u.profile
			}
			if flags.Changed("group") {
				upd.SessionGroupID = &u.group
			}
			_, err = a.services.GetSessionService().UpdateSession(cmd.Context(), args[0], &upd)
			return err
		},
	}
	update.Flags().StringVar(&u.name, "name", "", "session name")
	update.Flags().StringVar(&u.table, "table", "", "table name")
	update.Flags().StringVar(&u.region, "region", "", "AWS region")
	update.Flags().StringVar(&u.profile, "profile", "", "AWS credential profile")
	update.Flags().StringVar(&u.group, "group", "", "session group id")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			return a.services.GetSessionService().DeleteSession(cmd.Context(), args[0])
		},
	}

	tables := &cobra.Command{
		Use:   "tables <id>",
		Short: "List the tables reachable with a session's region and credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			names, err := a.services.GetSessionService().ListTables(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.AddCommand(create, list, update, del, tables)
	return cmd
}

func newGroupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage session groups",
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a session group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			group, err := a.services.GetSessionService().CreateGroup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), group.SessionGroupID)
			return nil
		},
	}

	var (
		page, pageSize int
		search         string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List session groups by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			groups, err := a.services.GetSessionService().ListGroups(cmd.Context(), page, pageSize, search)
			if err != nil {
				return err
			}
			return printGroups(cmd.OutOrStdout(), groups)
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().IntVar(&pageSize, "page-size", 20, "entries per page")
	list.Flags().StringVar(&search, "search", "", "only names containing this text")

	rename := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a session group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			return a.services.GetSessionService().RenameGroup(cmd.Context(), args[0], args[1])
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session group and every session in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			n, err := a.services.GetSessionService().DeleteGroup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted group and %d sessions\n", n)
			return nil
		},
	}

	cmd.AddCommand(create, list, rename, del)
	return cmd
}
