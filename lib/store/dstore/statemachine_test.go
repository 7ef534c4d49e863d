package dstore

import (
	"bytes"
	"testing"

	"github.com/ValentinKolb/dProp/lib/db"
	"github.com/ValentinKolb/dProp/lib/db/engines/maple"
	"github.com/ValentinKolb/dProp/lib/property"
	"github.com/ValentinKolb/dProp/lib/store"
	"github.com/ValentinKolb/dProp/lib/store/dstore/internal"
	sm "github.com/lni/dragonboat/v4/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMachine() *DocStateMachine {
	factory := CreateStateMaschineFactory(func() db.DocDB { return maple.NewMapleDB(nil) })
	return factory(1, 1).(*DocStateMachine)
}

func entry(index uint64, cmd internal.Command) sm.Entry {
	return sm.Entry{Index: index, Cmd: cmd.Serialize()}
}

func insertCmd(t *testing.T, rec property.Record) internal.Command {
	data, err := rec.Marshal()
	require.NoError(t, err)
	return internal.Command{Type: internal.CommandTInsert, Key: rec.CustomID, Value: data}
}

func TestStateMachineCommands(t *testing.T) {
	fsm := newMachine()
	rec := property.Record{CustomID: "NEW-NEWY-123", City: "New York", Price: 500000, Images: []string{}}

	entries, err := fsm.Update([]sm.Entry{
		entry(1, insertCmd(t, rec)),
		entry(2, insertCmd(t, rec)),
		entry(3, internal.Command{Type: internal.CommandTUpdate, Key: rec.CustomID, Value: []byte(`{"price":999}`)}),
		entry(4, internal.Command{Type: internal.CommandTUpdate, Key: "missing", Value: []byte(`{"price":1}`)}),
		entry(5, internal.Command{Type: internal.CommandTDelete, Key: "missing"}),
		{Index: 6},
		entry(7, internal.Command{Type: internal.CommandType(99), Key: "x"}),
	})
	require.NoError(t, err)

	codes := make([]store.RetCode, len(entries))
	for i, e := range entries {
		codes[i] = store.RetCode(e.Result.Value)
	}
	assert.Equal(t, []store.RetCode{
		store.RetCSuccess,
		store.RetCDuplicate,
		store.RetCSuccess,
		store.RetCNotFound,
		store.RetCNotFound,
		store.RetCInvalidOperation,
		store.RetCInvalidOperation,
	}, codes)

	res, err := fsm.Lookup(internal.Query{Type: internal.QueryTFindOne, Key: rec.CustomID})
	require.NoError(t, err)
	qr := res.(internal.QueryResult)
	require.True(t, qr.Ok)
	assert.Equal(t, 999.0, qr.Records[0].Price)

	res, err = fsm.Lookup(internal.Query{Type: internal.QueryTFind, Criteria: property.Criteria{City: "york"}})
	require.NoError(t, err)
	assert.Len(t, res.(internal.QueryResult).Records, 1)

	entries, err = fsm.Update([]sm.Entry{entry(8, internal.Command{Type: internal.CommandTDelete, Key: rec.CustomID})})
	require.NoError(t, err)
	assert.Equal(t, uint64(store.RetCSuccess), entries[0].Result.Value)

	res, err = fsm.Lookup(internal.Query{Type: internal.QueryTFindOne, Key: rec.CustomID})
	require.NoError(t, err)
	assert.False(t, res.(internal.QueryResult).Ok)
}

func TestStateMachineRejectsMismatchedKey(t *testing.T) {
	fsm := newMachine()
	cmd := insertCmd(t, property.Record{CustomID: "A"})
	cmd.Key = "B"

	entries, err := fsm.Update([]sm.Entry{entry(1, cmd)})
	require.NoError(t, err)
	assert.Equal(t, uint64(store.RetCInvalidOperation), entries[0].Result.Value)
}

func TestStateMachineSnapshot(t *testing.T) {
	source := newMachine()
	_, err := source.Update([]sm.Entry{
		entry(1, insertCmd(t, property.Record{CustomID: "A", Images: []string{}})),
		entry(2, insertCmd(t, property.Record{CustomID: "B", Images: []string{}})),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, source.SaveSnapshot(nil, &buf, nil, nil))

	target := newMachine()
	require.NoError(t, target.RecoverFromSnapshot(&buf, nil, nil))

	res, err := target.Lookup(internal.Query{Type: internal.QueryTFind})
	require.NoError(t, err)
	assert.Len(t, res.(internal.QueryResult).Records, 2)

	info, err := target.Lookup(internal.Query{Type: internal.QueryTGetDBInfo})
	require.NoError(t, err)
	assert.Equal(t, 2, info.(db.DatabaseInfo).DocCount)
	assert.Equal(t, db.ImplMaple, info.(db.DatabaseInfo).DbType)
}
