// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing core model objects (results, bundles,
// sessions in a given lifecycle state). The helpers drive objects through
// their real transitions rather than poking fields, so tests exercise the
// same invariants production code does. They are not intended for
// production usage.
package testutil
