package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/petasbytes/go-swarm/internal/calendar"
	"github.com/petasbytes/go-swarm/internal/gmail"
	"github.com/petasbytes/go-swarm/internal/google"
	"github.com/petasbytes/go-swarm/internal/logging"
	"github.com/petasbytes/go-swarm/memory"
	"github.com/petasbytes/go-swarm/tools"
)

func newChatCmd(o *rootOptions) *cobra.Command {
	var (
		actions    bool
		transcript string
		tokenFile  string
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the Gmail and Calendar assistant",
		Long: `chat starts at the triage agent and reads one message per line.
Type "exit" or "quit" to leave.

With --actions every line must be a JSON action object, for example
  {"action": "Get Emails", "max_results": 10, "query": "is:unread"}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("transcript") {
				cfg.Transcript = transcript
			}
			if cmd.Flags().Changed("token-file") {
				cfg.TokenFile = tokenFile
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := newCompleter(cfg)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, c, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				if err := a.close(); err != nil {
					a.logger.Warn("shutdown", logging.Err(err))
				}
			}()

			svcs, err := google.NewServices(ctx, cfg.TokenFile)
			if err != nil {
				return err
			}
			assistant, err := tools.NewAssistant(cfg.Model, gmail.New(svcs.Gmail), calendar.New(svcs.Calendar))
			if err != nil {
				return err
			}

			s := newSession(a.runner, a.printer, a.logger, assistant.Triage)
			s.actions = actions
			fmt.Fprintln(cmd.OutOrStdout(), "Chat with the assistant (exit, quit or Ctrl-C to leave)")
			loopErr := s.loop(ctx, cmd.InOrStdin())

			if cfg.Transcript != "" {
				if err := memory.SaveTranscript(cfg.Transcript, s.conv.Messages()); err != nil {
					a.logger.Warn("failed to save transcript", logging.Err(err))
				}
			}
			return loopErr
		},
	}
	cmd.Flags().BoolVar(&actions, "actions", false, "treat each line as a JSON action object")
	cmd.Flags().StringVar(&transcript, "transcript", "", "write the conversation as JSON to this path on exit")
	cmd.Flags().StringVar(&tokenFile, "token-file", "", "OAuth token file (authorized-user JSON)")
	return cmd
}
