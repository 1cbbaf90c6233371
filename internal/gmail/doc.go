// Package gmail is a thin adapter over the Gmail API: list, get, send and
// delete for the signed-in account, with messages flattened to subject,
// sender and plain-text body.
package gmail
