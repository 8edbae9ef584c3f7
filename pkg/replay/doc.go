// Package replay defines the domain model for install-traffic replay lists.
//
// A replay list is an ordered sequence of Request records describing the
// HTTP content requests an install agent issued against a distribution
// endpoint. Requests address content by a (product root, root folder,
// content key) triple; a request either asks for a byte range or for the
// whole object, never both.
//
// Coalesce merges a raw request sequence into the minimal covering set per
// logical object, and Compare diffs two replay lists by key and covered
// bytes. Both preserve first-appearance ordering so results are
// deterministic for a given input.
package replay
