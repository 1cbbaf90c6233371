package tools

import (
	"context"

	"github.com/petasbytes/go-swarm/agent"
)

const (
	SalesAgentName  = "Sales Assistant"
	RefundAgentName = "Refund Agent"
)

type ItemInput struct {
	ItemName string `json:"item_name" jsonschema_description:"Name of the item, including colour and size if known."`
}

// Shop is the credential-free demo pair: one agent sells, the other refunds.
// Neither hands off; the caller picks the agent for each turn.
type Shop struct {
	Sales  *agent.Agent
	Refund *agent.Agent
}

func NewShop(model string) *Shop {
	with := func(o ...agent.Option) []agent.Option {
		if model != "" {
			o = append(o, agent.WithModel(model))
		}
		return o
	}
	return &Shop{
		Sales: agent.New(SalesAgentName, with(
			agent.WithInstructions("You are a sales assistant. Sell the user a product."),
			agent.WithTools(agent.NewTextTool("place_order", "Place an order for one item.", succeed)),
		)...),
		Refund: agent.New(RefundAgentName, with(
			agent.WithInstructions("You are a refund agent. Help the user with refunds."),
			agent.WithTools(agent.NewTextTool("execute_refund", "Refund one previously ordered item.", succeed)),
		)...),
	}
}

func succeed(context.Context, ItemInput) (string, error) { return "success", nil }
