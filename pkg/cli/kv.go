package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nimburion/remotestore/pkg/store"
	"github.com/nimburion/remotestore/pkg/store/factory"
)

// ErrNotFound is returned by the get command for an absent key.
var ErrNotFound = errors.New("key not found")

// withStore opens the configured backend for one command and closes it after.
// A backend that failed to initialize is reported as an error here, since a
// one-shot command has nothing to degrade to.
func withStore(cmd *cobra.Command, flags *rootFlags, fn func(ctx context.Context, svc store.DataService) error) error {
	cfg, log, err := flags.load(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	backend, result, err := factory.Open(ctx, cfg.DataStore, log)
	if err != nil {
		return err
	}
	defer backend.Close()

	if result.Status == store.InitFailed {
		return fmt.Errorf("%s data store unavailable: %w", result.Backend, result.Err)
	}
	return fn(ctx, backend)
}

func newGetCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the JSON value stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, flags, func(ctx context.Context, svc store.DataService) error {
				value, err := svc.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if value == nil {
					return fmt.Errorf("%w: %s", ErrNotFound, args[0])
				}
				encoded, err := json.Marshal(value)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
				return nil
			})
		},
	}
}

func newSetCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <json>",
		Short: "Store a JSON value under key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value any
			if err := json.Unmarshal([]byte(args[1]), &value); err != nil {
				return fmt.Errorf("value must be a JSON document: %w", err)
			}
			return withStore(cmd, flags, func(ctx context.Context, svc store.DataService) error {
				return svc.Set(ctx, args[0], value)
			})
		},
	}
}

func newDeleteCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove key; succeeds when the key does not exist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, flags, func(ctx context.Context, svc store.DataService) error {
				return svc.Delete(ctx, args[0])
			})
		},
	}
}
