package store

import (
	"cmp"
	"slices"

	"github.com/ValentinKolb/dProp/lib/db"
	"github.com/ValentinKolb/dProp/lib/property"
)

// The functions in this file implement the collection semantics on top of a db.DocDB.
// They are shared by the local store and the RAFT state machine so both behave the same.

// InsertDoc stores rec under its custom_id if the key is still free.
func InsertDoc(database db.DocDB, rec property.Record, writeIdx uint64) *Error {
	if !database.SupportsFeature(db.FeaturePutIfAbsent) {
		return NewError(RetCUnsupportedOperation, "PutIfAbsent operation is not supported")
	}
	if rec.CustomID == "" {
		return NewError(RetCInvalidOperation, "record has no custom_id")
	}
	data, err := rec.Marshal()
	if err != nil {
		return NewError(RetCInvalidOperation, err.Error())
	}
	if !database.PutIfAbsent(rec.CustomID, data, writeIdx) {
		return NewError(RetCDuplicate, "record "+rec.CustomID+" already exists")
	}
	return nil
}

// FindOneDoc loads the record stored under customID.
func FindOneDoc(database db.DocDB, customID string) (property.Record, bool, *Error) {
	if !database.SupportsFeature(db.FeatureGet) {
		return property.Record{}, false, NewError(RetCUnsupportedOperation, "Get operation is not supported")
	}
	data, ok := database.Get(customID)
	if !ok {
		return property.Record{}, false, nil
	}
	rec, err := property.UnmarshalRecord(data)
	if err != nil {
		return property.Record{}, false, NewError(RetCInternalError, err.Error())
	}
	return rec, true, nil
}

// FindDocs scans the database and returns every matching record ordered by custom_id.
// An exact custom_id criteria is answered with a point lookup.
func FindDocs(database db.DocDB, criteria property.Criteria) ([]property.Record, *Error) {
	if criteria.CustomID != "" {
		rec, ok, err := FindOneDoc(database, criteria.CustomID)
		if err != nil || !ok {
			return []property.Record{}, err
		}
		return []property.Record{rec}, nil
	}

	if !database.SupportsFeature(db.FeatureRange) {
		return nil, NewError(RetCUnsupportedOperation, "Range operation is not supported")
	}

	var (
		out    = []property.Record{}
		decErr *Error
	)
	database.Range(func(_ string, doc []byte) bool {
		rec, err := property.UnmarshalRecord(doc)
		if err != nil {
			decErr = NewError(RetCInternalError, err.Error())
			return false
		}
		if criteria.Matches(rec) {
			out = append(out, rec)
		}
		return true
	})
	if decErr != nil {
		return nil, decErr
	}

	slices.SortFunc(out, func(a, b property.Record) int { return cmp.Compare(a.CustomID, b.CustomID) })
	return out, nil
}

// UpdateDoc applies fields to the record stored under customID.
func UpdateDoc(database db.DocDB, customID string, fields property.Fields, writeIdx uint64) (bool, *Error) {
	if !database.SupportsFeature(db.FeatureUpdate) {
		return false, NewError(RetCUnsupportedOperation, "Update operation is not supported")
	}

	found, err := database.Update(customID, writeIdx, func(doc []byte) ([]byte, error) {
		rec, err := property.UnmarshalRecord(doc)
		if err != nil {
			return nil, err
		}
		if err := rec.Apply(fields); err != nil {
			return nil, err
		}
		return rec.Marshal()
	})
	if err != nil {
		return found, NewError(RetCInvalidOperation, err.Error())
	}
	return found, nil
}

// DeleteDoc removes the record stored under customID.
func DeleteDoc(database db.DocDB, customID string, writeIdx uint64) (bool, *Error) {
	if !database.SupportsFeature(db.FeatureDelete) {
		return false, NewError(RetCUnsupportedOperation, "Delete operation is not supported")
	}
	return database.Delete(customID, writeIdx), nil
}
