package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newStateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Read or write the stored UI state",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the stored UI state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := a.client.GetState(cmd.Context())
			if err != nil {
				return err
			}
			var v any
			if err := json.Unmarshal(state, &v); err != nil {
				return fmt.Errorf("decoding state: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "save [FILE|-]",
		Short: "Store UI state read from FILE or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if len(args) == 0 || args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("reading state: %w", err)
			}
			ack, err := a.client.SaveState(cmd.Context(), raw)
			if err != nil {
				return err
			}
			if !ack.Success {
				return fmt.Errorf("saving state: %s", ack.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "state saved")
			return nil
		},
	})

	return cmd
}
