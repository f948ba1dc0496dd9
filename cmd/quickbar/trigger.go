package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/dshills/quickbar/internal/dispatcher/command"
)

func newTriggerCommand(flags *globalFlags) *cobra.Command {
	var winID int
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "trigger <command> [json-data]",
		Short: "Send a command to a running host",
		Long: `Trigger posts one command message to the host's /msg-trigger endpoint
and prints the result.

Example:
  quickbar trigger get-path '{"name":"temp"}'
  quickbar trigger hide-main-window`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			msg := command.Message{Type: command.Name(args[0]), WinID: winID}
			if len(args) == 2 {
				if !json.Valid([]byte(args[1])) {
					return fmt.Errorf("data is not valid JSON: %s", args[1])
				}
				msg.Data = json.RawMessage(args[1])
			}
			body, err := json.Marshal(msg)
			if err != nil {
				return err
			}

			client := &http.Client{Timeout: timeout}
			resp, err := client.Post("http://"+cfg.Bridge.Addr+"/msg-trigger", "application/json", bytes.NewReader(body))
			if err != nil {
				return fmt.Errorf("contacting host at %s: %w", cfg.Bridge.Addr, err)
			}
			defer resp.Body.Close()
			out, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if !gjson.ValidBytes(out) {
				return fmt.Errorf("host replied %s: %s", resp.Status, bytes.TrimSpace(out))
			}

			res := gjson.ParseBytes(out)
			fmt.Fprintln(cmd.OutOrStdout(), res.Get("result").Raw)
			if res.Get("status").String() == "error" {
				return errors.New(res.Get("error").String())
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&winID, "win", 0, "originating window id")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")
	return cmd
}
