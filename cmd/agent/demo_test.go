package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-swarm/memory"
	"github.com/petasbytes/go-swarm/tools"
)

func TestRunDemo_SwitchesAgentsAndKeepsHistory(t *testing.T) {
	shop := tools.NewShop("")
	c := &scripted{replies: []reply{
		say("", memory.ToolCall{ID: "c1", Name: "place_order", Arguments: `{"item_name":"yellow Kane crocs"}`},
			memory.ToolCall{ID: "c2", Name: "place_order", Arguments: `{"item_name":"pink Kane crocs"}`}),
		say("Both pairs are ordered."),
		say("", memory.ToolCall{ID: "c3", Name: "execute_refund", Arguments: `{"item_name":"pink Kane crocs"}`}),
		say("Your refund for the pink pair is done."),
	}}
	var out bytes.Buffer
	s := newTestSession(c, shop.Sales, &out)

	require.NoError(t, runDemo(context.Background(), s, demoScript(shop)))

	require.Len(t, c.prompts, 4)
	assert.Equal(t, shop.Refund.Instructions(), c.prompts[2][0].Content)
	// The refund agent sees the whole sales exchange.
	assert.Len(t, c.prompts[2], 1+1+4+1)

	msgs := s.conv.Messages()
	assert.NoError(t, memory.Validate(msgs))
	assert.Equal(t, "success", msgs[2].Content)
	assert.Equal(t, "success", msgs[3].Content)

	text := out.String()
	assert.Contains(t, text, "User: Order a yellow Kane crocs and a pink one.\n")
	assert.Contains(t, text, `Sales Assistant: place_order({"item_name":"yellow Kane crocs"})`)
	assert.Contains(t, text, "Refund Agent: Your refund for the pink pair is done.\n")
}

func TestRunDemo_StopsOnError(t *testing.T) {
	shop := tools.NewShop("")
	c := &scripted{}
	var out bytes.Buffer
	s := newTestSession(c, shop.Sales, &out)

	assert.Error(t, runDemo(context.Background(), s, demoScript(shop)))
	assert.Len(t, c.prompts, 1)
}
