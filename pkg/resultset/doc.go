// Package resultset implements the composable query result: a set of
// document identifiers scoped to a single vault, built up by chained
// filter operations (mode_and/mode_or, include,
// exclude, equal, greater, lesser, contains, tagged), materialized on
// demand into documents via the owning vault, and annotated with a
// cost trace (command name, elapsed time, pre- and post-filter
// cardinality) for diagnostic introspection from the host API.
package resultset
