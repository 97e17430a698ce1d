// Package store is a small client for overview documents kept in a
// Firestore collection, spoken to over the REST API.
//
// Documents hold the overview ID, the generated text, a creation timestamp
// and an optional chat transcript. The transcript is only ever replaced as a
// whole, so concurrent writers race and the last write wins.
package store
