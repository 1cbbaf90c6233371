// Package calendar is a thin adapter over the Google Calendar API. Events are
// always written in UTC and listed as single instances ordered by start time.
package calendar
