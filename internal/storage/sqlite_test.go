package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/pdfindex/pkg/types"
)

func setupTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestMigrations(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	v, err := SchemaVersion(ctx, store.db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, v.String())

	// applying again is a no-op
	require.NoError(t, ApplyMigrations(ctx, store.db))
	var applied int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&applied))
	assert.Equal(t, len(AllMigrations), applied)

	require.NoError(t, RollbackMigration(ctx, store.db))
	v, err = SchemaVersion(ctx, store.db)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0", v.String())
	assert.Error(t, RollbackMigration(ctx, store.db))

	var table string
	err = store.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='records'").Scan(&table)
	assert.Error(t, err, "records table removed by rollback")

	require.NoError(t, ApplyMigrations(ctx, store.db))
	v, err = SchemaVersion(ctx, store.db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, v.String())

	// the re-created schema is usable
	coll, err := store.CreateCollection(ctx, "after_rollback")
	require.NoError(t, err)
	require.NoError(t, coll.Add(ctx, []string{"text"}, []types.Metadata{{PDF: "a.pdf", Page: 1}}, [][]float32{{1}}))
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")

	store, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	coll, err := store.CreateCollection(ctx, "pdf_docs")
	require.NoError(t, err)
	docs, metas, embs := sampleRecords()
	require.NoError(t, coll.Add(ctx, docs, metas, embs))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	_, err = reopened.CreateCollection(ctx, "pdf_docs")
	assert.ErrorIs(t, err, types.ErrCollectionExists)

	coll, err = reopened.GetCollection(ctx, "pdf_docs")
	require.NoError(t, err)
	records, err := coll.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, embs[2], records[2].Embedding)
}

func TestSQLiteAddRollsBack(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	_, err := store.db.Exec(`
		CREATE TRIGGER reject_boom BEFORE INSERT ON records
		WHEN NEW.document = 'boom'
		BEGIN SELECT RAISE(ABORT, 'boom rejected'); END;
	`)
	require.NoError(t, err)

	coll, err := store.CreateCollection(ctx, "docs")
	require.NoError(t, err)

	err = coll.Add(ctx,
		[]string{"fine", "boom"},
		[]types.Metadata{{PDF: "a.pdf", Page: 1}, {PDF: "a.pdf", Page: 2}},
		[][]float32{{1, 2}, {3, 4}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom rejected")

	n, err := coll.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "first record rolled back")

	// the dimension update was rolled back too
	require.NoError(t, coll.Add(ctx, []string{"ok"}, []types.Metadata{{PDF: "a.pdf", Page: 1}}, [][]float32{{1, 2, 3}}))
}

func TestSQLiteStaleHandle(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	coll, err := store.CreateCollection(ctx, "gone")
	require.NoError(t, err)
	require.NoError(t, store.DeleteCollection(ctx, "gone"))

	err = coll.Add(ctx, []string{"x"}, []types.Metadata{{PDF: "a.pdf", Page: 1}}, [][]float32{{1}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewSQLiteStoreBadPath(t *testing.T) {
	_, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "index.db"))
	assert.Error(t, err)
}

func TestVectorEncoding(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.4028235e38}
	out, err := deserializeVector(serializeVector(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Len(t, serializeVector(in), 16)

	_, err = deserializeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}
