package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amabee/property-rental/internal/client"
	"github.com/amabee/property-rental/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCallCmd() *cobra.Command {
	var (
		apiURL    string
		imagePath string
		timeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "call <operation> [json]",
		Short: "Invoke an operation on a running rentald and print the response",
		Example: `  rentald call getDashboardData
  rentald call createCategory '{"name":"Studio"}'
  rentald call addHouse '{"house_no":"A-1","category_id":1,"price":"4500"}' --image front.jpg`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiURL == "" {
				apiURL = config.Load().Client.APIURL
			}
			payload := "{}"
			if len(args) == 2 {
				payload = args[1]
			}

			opts := client.DefaultOptions()
			opts.Timeout = timeout
			c := client.New(apiURL, opts, zap.NewNop())

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			env, err := c.Call(ctx, args[0], payload, imagePath)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(env, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if !env.Success() {
				return fmt.Errorf("%s failed: %d %s", args[0], env.Code, env.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&apiURL, "url", "", "rentald base URL (default $RENTALD_API_URL)")
	cmd.Flags().StringVar(&imagePath, "image", "", "image file to attach (addHouse, updateHouse)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	return cmd
}
