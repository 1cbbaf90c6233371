// Package tools holds the concrete tool catalog and the agent graphs built from it.
//
// Includes:
//   - Gmail tools (list_messages, get_message, send_message, delete_message) over a Mailbox.
//   - Calendar tools (list_events, create_event, update_event, delete_event) over a Calendar.
//   - Assistant: triage agent that transfers to the Gmail or Calendar agent; both can transfer back.
//   - Shop: sales assistant (place_order) and refund agent (execute_refund) for the offline demo.
//
// Every Gmail and Calendar tool is fail-soft: a provider error is logged by the
// runner and the model receives [], null or false instead.
package tools
