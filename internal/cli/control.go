package cli

import (
	"context"
	"fmt"

	"github.com/andyrewlee/g3console/data"
	"github.com/spf13/cobra"
)

func newLaunchCmd(a *app, opts *GlobalOptions) *cobra.Command {
	req := data.LaunchRequest{}

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch a new instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := a.client.LaunchInstance(cmd.Context(), req)
			if err != nil {
				return err
			}
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), inst)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Launched %s (%s) in %s\n", inst.ID, inst.Status, inst.Workspace)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Workspace, "workspace", "w", "", "Workspace directory for the instance")
	cmd.Flags().StringVar(&req.Provider, "provider", "", "LLM provider")
	cmd.Flags().StringVar(&req.Model, "model", "", "Model name")
	cmd.Flags().StringVarP(&req.Prompt, "prompt", "p", "", "Initial prompt")
	cmd.Flags().BoolVar(&req.Autonomous, "autonomous", false, "Run in autonomous (player/coach) mode")
	cmd.Flags().IntVar(&req.MaxTurns, "max-turns", 0, "Maximum autonomous turns (0 for server default)")
	_ = cmd.MarkFlagRequired("workspace")

	return cmd
}

func newKillCmd(a *app, opts *GlobalOptions) *cobra.Command {
	return newControlCmd(a, opts, "kill ID", "Terminate an instance", "killed", (*data.Client).KillInstance)
}

func newRestartCmd(a *app, opts *GlobalOptions) *cobra.Command {
	return newControlCmd(a, opts, "restart ID", "Restart an instance", "restarted", (*data.Client).RestartInstance)
}

// controlAction is a client method that posts one control action for an instance.
type controlAction func(c *data.Client, ctx context.Context, id string) (*data.Ack, error)

// newControlCmd builds a command running action against the client created
// in PersistentPreRunE.
func newControlCmd(a *app, opts *GlobalOptions, use, short, verb string, action controlAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ack, err := action(a.client, cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printAck(cmd, opts, ack, fmt.Sprintf("%s %s", args[0], verb))
		},
	}
}

func printAck(cmd *cobra.Command, opts *GlobalOptions, ack *data.Ack, fallback string) error {
	if opts.JSON {
		return printJSON(cmd.OutOrStdout(), ack)
	}
	if !ack.Success {
		msg := ack.Message
		if msg == "" {
			msg = "server reported failure"
		}
		return fmt.Errorf("%s", msg)
	}
	msg := ack.Message
	if msg == "" {
		msg = fallback
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}
