// Package roomdesk provides top-level metadata for the RoomDesk API.
//
// @title RoomDesk Reservation API
// @version 1.0.0
// @description Room-reservation lifecycle API: submission, review, publication, edit requests, soft deletion and restore.
// @BasePath /roomdesk
package roomdesk
