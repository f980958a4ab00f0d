package cli

import (
	"fmt"
	"strings"

	"github.com/andyrewlee/g3console/data"
	"github.com/spf13/cobra"
)

func newLsCmd(a *app, opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List instances",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			instances, err := a.client.ListInstances(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.JSON {
				return printJSON(out, instances)
			}
			if len(instances) == 0 {
				fmt.Fprintln(out, "No instances running")
				return nil
			}
			w := newTable(out)
			fmt.Fprintln(w, "ID\tSTATUS\tWORKSPACE\tTOKENS\tTOOLS\tERRORS\tMIN")
			for _, inst := range instances {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					inst.ID, inst.Status, inst.Workspace,
					count(inst.Stats.TotalTokens), count(inst.Stats.ToolCalls),
					count(inst.Stats.Errors), minutes(inst.Stats.DurationSecs))
			}
			return w.Flush()
		},
	}
}

func newShowCmd(a *app, opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := a.client.GetInstance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.JSON {
				return printJSON(out, detail)
			}

			fmt.Fprintf(out, "ID:          %s\n", detail.ID)
			fmt.Fprintf(out, "Workspace:   %s\n", detail.Workspace)
			fmt.Fprintf(out, "Status:      %s\n", detail.Status)
			if detail.PID > 0 {
				fmt.Fprintf(out, "PID:         %d\n", detail.PID)
			}
			if detail.StartedAt != nil {
				fmt.Fprintf(out, "Started:     %s\n", detail.StartedAt.Local().Format("2006-01-02 15:04:05"))
			}
			fmt.Fprintf(out, "Tokens:      %s\n", count(detail.Stats.TotalTokens))
			fmt.Fprintf(out, "Tool calls:  %s\n", count(detail.Stats.ToolCalls))
			fmt.Fprintf(out, "Errors:      %s\n", count(detail.Stats.Errors))
			fmt.Fprintf(out, "Duration:    %s min\n", minutes(detail.Stats.DurationSecs))
			if detail.LatestMessage != "" {
				fmt.Fprintf(out, "Latest:      %s\n", detail.LatestMessage)
			}
			if gs := strings.TrimSpace(detail.GitStatus); gs != "" {
				fmt.Fprintf(out, "\nGit status:\n%s\n", gs)
			}
			if len(detail.ProjectFiles) > 0 {
				fmt.Fprintln(out, "\nProject files:")
				for _, f := range detail.ProjectFiles {
					fmt.Fprintf(out, "  %s\n", f)
				}
			}
			return nil
		},
	}
}

type logsOptions struct {
	Tail     int
	Tools    bool
	Messages bool
}

func newLogsCmd(a *app, opts *GlobalOptions) *cobra.Command {
	lo := &logsOptions{}

	cmd := &cobra.Command{
		Use:   "logs ID",
		Short: "Show tool calls and chat messages of an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logs, err := a.client.GetInstanceLogs(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			logs.ToolCalls = tail(logs.ToolCalls, lo.Tail)
			logs.ChatMessages = tail(logs.ChatMessages, lo.Tail)
			if lo.Tools {
				logs.ChatMessages = nil
			}
			if lo.Messages {
				logs.ToolCalls = nil
			}

			out := cmd.OutOrStdout()
			if opts.JSON {
				return printJSON(out, logs)
			}
			if !lo.Messages {
				printToolCalls(cmd, logs.ToolCalls)
			}
			if !lo.Tools {
				printMessages(cmd, logs.ChatMessages)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&lo.Tail, "tail", 0, "Show only the last N entries of each list (0 for all)")
	cmd.Flags().BoolVar(&lo.Tools, "tools", false, "Show only tool calls")
	cmd.Flags().BoolVar(&lo.Messages, "messages", false, "Show only chat messages")
	cmd.MarkFlagsMutuallyExclusive("tools", "messages")

	return cmd
}

// tail returns the last n entries of s, or all of s when n <= 0.
func tail[T any](s []T, n int) []T {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func printToolCalls(cmd *cobra.Command, calls []data.ToolCall) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Tool calls (%d):\n", len(calls))
	if len(calls) == 0 {
		fmt.Fprintln(out, "  No tool calls yet")
	}
	w := newTable(out)
	for _, tc := range calls {
		status := "ok"
		if !tc.Success {
			status = "failed"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
			tc.Timestamp.Local().Format("15:04:05"), status, tc.Tool, firstLine(tc.Result))
	}
	_ = w.Flush()
}

func printMessages(cmd *cobra.Command, msgs []data.ChatMessage) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Messages (%d):\n", len(msgs))
	if len(msgs) == 0 {
		fmt.Fprintln(out, "  No messages yet")
	}
	for _, m := range msgs {
		tag := m.Agent
		if tag == "" {
			tag = m.Role
		}
		fmt.Fprintf(out, "  [%s] %s\n", tag, m.Timestamp.Local().Format("15:04:05"))
		for _, line := range strings.Split(strings.TrimRight(m.Content, "\n"), "\n") {
			fmt.Fprintf(out, "    %s\n", line)
		}
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
