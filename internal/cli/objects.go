package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/SystemBuilders/StripeKey/internal/objects"
	"github.com/spf13/cobra"
)

var (
	putFile string

	rmCmd = &cobra.Command{
		Use:   "rm <pool> <oid>",
		Short: "Force-remove a striped object, breaking a stale striper lock",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := newClient()
			if err != nil {
				return err
			}
			if err := sc.Remove(cmd.Context(), args[0], args[1]); err != nil {
				if objects.IsRetryable(err) {
					return fmt.Errorf("%s is locked again, retry later: %w", args[1], err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s/%s\n", args[0], args[1])
			return nil
		},
	}

	putCmd = &cobra.Command{
		Use:   "put <pool> <oid>",
		Short: "Write a new object with the new-object hint",
		Long:  "Write a new object with the new-object hint. The data is read from --file, or from stdin when it is not set.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), putFile)
			if err != nil {
				return err
			}
			sc, err := newClient()
			if err != nil {
				return err
			}
			if err := sc.WriteNew(cmd.Context(), args[0], args[1], data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s/%s\n", len(data), args[0], args[1])
			return nil
		},
	}

	statCmd = &cobra.Command{
		Use:   "stat <pool> <oid>",
		Short: "Show the size and mtime of a striped object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := newClient()
			if err != nil {
				return err
			}
			resp, err := sc.Stat(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	lockersCmd = &cobra.Command{
		Use:   "lockers <pool> <oid>",
		Short: "List the holders of an object's striper lock",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := newClient()
			if err != nil {
				return err
			}
			info, err := sc.Lockers(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}

	breakCmd = &cobra.Command{
		Use:   "break <pool> <oid>",
		Short: "Break every holder of an object's striper lock",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := newClient()
			if err != nil {
				return err
			}
			if err := sc.BreakLock(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "lock on %s/%s broken\n", args[0], args[1])
			return nil
		},
	}
)

func init() {
	putCmd.Flags().StringVarP(&putFile, "file", "f", "", "file to upload (default stdin)")
	rootCmd.AddCommand(rmCmd, putCmd, statCmd, lockersCmd, breakCmd)
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
