// Package domain models campus bug sightings and their per-building tally.
//
// # Sightings
//
// A sighting is a single report: a free-text description, the building code
// where the bug was seen, an embeddable image reference, and the time it was
// accepted. Sightings are immutable once created and live only as long as the
// visitor session that holds them.
//
// # Location codes
//
// Locations are short building codes drawn from a static [Catalog], fixed at
// build time. Codes are matched case-insensitively and stored in their
// canonical upper-case form:
//
//	"smn"  →  "SMN" (Smith North Residence)
//	" hgn" →  "HGN" (Hagen Hall)
//	"ZZZ"  →  rejected
//
// # Tally
//
// [Tally] groups sightings by location and ranks the result:
//
//	count descending, then location code ascending (byte-wise)
//
// The sum of all counts equals the number of sightings and only locations with
// at least one sighting appear. [TopCount] is the largest count, or 1 for an
// empty tally so relative bar widths never divide by zero.
//
// # Errors
//
// Submission failures are classified as validation, I/O, or verification
// errors. See [SubmissionError]. All of them abort only the current attempt.
package domain
