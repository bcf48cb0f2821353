package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/echopf/echo.go/pkg/push"
)

func newListenCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "listen [url] [device token]",
		Short: "Print push notifications delivered to an installation until interrupted",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			log, err := opts.newLogger()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			r := push.NewReceiver(args[0], cfg.AppID, cfg.AppKey, args[1]).SetLogger(log)
			err = r.Listen(cmd.Context(), func(msg push.Message) {
				line, err := json.Marshal(msg)
				if err != nil {
					log.Error("failed to encode push message", "error", err)
					return
				}
				fmt.Fprintf(w, "%s\n", line)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
