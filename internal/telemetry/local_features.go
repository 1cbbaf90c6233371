package telemetry

import (
	"context"

	"github.com/petasbytes/go-swarm/internal/metrics"
)

// EmitLocalFeatures records size features of a user line, never the text itself.
func EmitLocalFeatures(ctx context.Context, user string) {
	if !ObserveEnabled() {
		return
	}
	turnID, _ := TurnIDFromContext(ctx)
	f := metrics.CountFeatures(user)
	Emit("local_features", map[string]any{
		"turn_id":          turnID,
		"features_version": "1",
		"user":             f,
	})
}
