// Package lms defines the records served by the LMS backend and the field
// sets sent when creating or updating them.
//
// Records decode leniently: ids and numbers may arrive as JSON numbers or as
// strings. Field sets carry validate tags and are checked by Validate before
// anything is sent to the server.
package lms
