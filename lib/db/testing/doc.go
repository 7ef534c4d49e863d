// Package testing provides standardised tests and benchmarks for
// database implementations that satisfy the db.DocDB interface.
//
// The package contains:
//   - testing: A test suite validating conformance to the DocDB interface contract
//   - benchmark: Performance tests for the common document operations
//
// Example usage:
//
//	factory := func() db.DocDB {
//		return NewMyDatabase()
//	}
//
//	dbtesting.RunDocDBTests(t, "MyDatabase", factory)
//	dbtesting.RunDocDBBenchmarks(b, "MyDatabase", factory)
package testing
