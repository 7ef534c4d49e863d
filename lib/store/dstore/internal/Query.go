package internal

import "github.com/ValentinKolb/dProp/lib/property"

// QueryType defines the possible queries for the state machine.
type QueryType uint8

const (
	QueryTFindOne   QueryType = iota // Retrieve a record by custom_id.
	QueryTFind                       // Retrieve all records matching a criteria.
	QueryTGetDBInfo                  // Retrieve metadata about the database underlying the machine.
)

func (q QueryType) String() string {
	switch q {
	case QueryTFindOne:
		return "FindOne"
	case QueryTFind:
		return "Find"
	case QueryTGetDBInfo:
		return "GetDBInfo"
	default:
		return "Unknown"
	}
}

// Query defines the structure for lookup requests (read-only) sent via SyncRead or ReadStale
type Query struct {
	Type     QueryType         // The type of Query to perform.
	Key      string            // The custom_id for QueryTFindOne.
	Criteria property.Criteria // The search criteria for QueryTFind.
}

// QueryResult is the result of the record queries.
// QueryTGetDBInfo returns a db.DatabaseInfo instead.
type QueryResult struct {
	Ok      bool
	Records []property.Record
}
