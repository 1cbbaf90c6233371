package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/petasbytes/go-swarm/agent"
	"github.com/petasbytes/go-swarm/internal/logging"
	"github.com/petasbytes/go-swarm/tools"
)

type demoStep struct {
	agent *agent.Agent
	input string
}

// demoScript is the shop scenario: buy two items, then ask for a refund of
// the last one without naming it.
func demoScript(shop *tools.Shop) []demoStep {
	return []demoStep{
		{shop.Sales, "Order a yellow Kane crocs and a pink one."},
		{shop.Refund, "Actually, I want a refund."},
	}
}

// runDemo plays steps in one conversation, switching agents between turns.
func runDemo(ctx context.Context, s *session, steps []demoStep) error {
	for _, step := range steps {
		s.current = step.agent
		s.printer.user(step.input)
		if err := s.turn(ctx, step.input); err != nil {
			return err
		}
	}
	return nil
}

func newDemoCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the offline sales and refund scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.load(cmd)
			if err != nil {
				return err
			}
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

			shop := tools.NewShop(cfg.Model)
			s := newSession(a.runner, a.printer, a.logger, shop.Sales)
			return runDemo(cmd.Context(), s, demoScript(shop))
		},
	}
}
