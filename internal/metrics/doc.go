// Package metrics provides local text features and Prometheus collectors for
// the turn loop. Features never carry raw text; collectors are labelled by
// model, tool and agent name only.
package metrics
