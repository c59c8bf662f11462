package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

type ReportsCmd struct {
	env        *Env
	company    string
	onBehalfOf string
}

// NewReportsCmd groups the commands working on previously generated reports.
func NewReportsCmd(env *Env) *cobra.Command {
	rc := &ReportsCmd{env: env}
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Manage generated reports",
	}
	cmd.PersistentFlags().StringVar(&rc.onBehalfOf, "on-behalf-of", "", "Actor whose reports to manage (admins only)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List generated reports, newest first",
		Args:  cobra.NoArgs,
		RunE:  rc.list,
	}
	list.Flags().StringVar(&rc.company, "company", "", "Only reports of this company")

	url := &cobra.Command{
		Use:   "url <id>",
		Short: "Print a time-limited download URL for a stored report",
		Args:  cobra.ExactArgs(1),
		RunE:  rc.url,
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a report from the history; the stored file is kept",
		Args:  cobra.ExactArgs(1),
		RunE:  rc.delete,
	}

	cmd.AddCommand(list, url, del)
	return cmd
}

func (rc *ReportsCmd) list(cmd *cobra.Command, _ []string) error {
	records, err := rc.env.App.History.List(cmd.Context(), rc.company, rc.onBehalfOf)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}
	return rc.env.Reporter.HandleHistory(records)
}

func (rc *ReportsCmd) url(cmd *cobra.Command, args []string) error {
	signed, err := rc.env.App.History.DownloadURL(cmd.Context(), args[0], rc.onBehalfOf)
	if err != nil {
		return fmt.Errorf("failed to sign report %s: %w", args[0], err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), signed.URL)
	fmt.Fprintf(cmd.ErrOrStderr(), "Expires at %s\n", signed.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}

func (rc *ReportsCmd) delete(cmd *cobra.Command, args []string) error {
	if err := rc.env.App.History.Delete(cmd.Context(), args[0], rc.onBehalfOf); err != nil {
		return fmt.Errorf("failed to delete report %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted report %s\n", args[0])
	return nil
}
