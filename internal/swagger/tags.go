package swagger

// @Tag.name Roomdesk Meta
// @Tag.description Operational probes and metadata about the reservation service.

// @Tag.name Accounts Auth
// @Tag.description Authentication flows for reservation accounts.

// @Tag.name Reservations
// @Tag.description Reservation lifecycle: drafts, review, publication, removal and restore.

// @Tag.name Edit Requests
// @Tag.description Post-publish change proposals and their review.
