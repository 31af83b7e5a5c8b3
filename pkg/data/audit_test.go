package data

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestAudit(t *testing.T) *AuditDB {
	t.Helper()
	db, err := OpenAudit(filepath.Join(t.TempDir(), AuditFileName))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testRun(category string, removed int) *AuditRun {
	run := &AuditRun{
		Category:      category,
		Threshold:     3,
		CreatedAt:     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		OriginalCount: 10,
		RemovedCount:  removed,
		FinalCount:    10 - removed,
		MislabelRate:  "10.0%",
	}
	for i := 0; i < removed; i++ {
		run.Removals = append(run.Removals, AuditRemoval{
			Index:        i * 2,
			RecordID:     "2401.0000" + string(rune('1'+i)),
			Title:        "Paper",
			Categories:   []string{category, "q-bio.QM"},
			Topic:        "medicine",
			KeywordCount: 4,
			Reason:       "medicine (4 keywords)",
		})
	}
	return run
}

func testAuditStore(t *testing.T, db *AuditDB) {
	t.Helper()

	id1, err := db.SaveRun(testRun("cs.DC", 1))
	require.NoError(t, err)
	id2, err := db.SaveRun(testRun("cs.AI", 2))
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	all, err := db.ListRuns("", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, id2, all[0].ID, "newest first")
	assert.Equal(t, "cs.AI", all[0].Category)
	assert.True(t, all[0].CreatedAt.Equal(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)))

	dc, err := db.ListRuns("cs.DC", 10)
	require.NoError(t, err)
	require.Len(t, dc, 1)
	assert.Equal(t, 9, dc[0].FinalCount)
	assert.Equal(t, "10.0%", dc[0].MislabelRate)

	limited, err := db.ListRuns("", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	removals, err := db.GetRemovals(id2)
	require.NoError(t, err)
	require.Len(t, removals, 2)
	assert.Equal(t, 0, removals[0].Index)
	assert.Equal(t, 2, removals[1].Index)
	assert.Equal(t, []string{"cs.AI", "q-bio.QM"}, removals[1].Categories)
	assert.Equal(t, "medicine (4 keywords)", removals[1].Reason)

	none, err := db.GetRemovals(id2 + 100)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAudit_SQLite(t *testing.T) {
	db := setupTestAudit(t)
	assert.Equal(t, driverSQLite, db.Driver())
	testAuditStore(t, db)
}

func TestAudit_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), AuditFileName)

	db, err := OpenAudit(path)
	require.NoError(t, err)
	_, err = db.SaveRun(testRun("cs.DC", 0))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenAudit(path)
	require.NoError(t, err)
	defer db.Close()

	list, err := db.ListRuns("cs.DC", 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAudit_Errors(t *testing.T) {
	_, err := OpenAudit("")
	assert.Error(t, err)

	var db *AuditDB
	_, err = db.SaveRun(testRun("cs.DC", 0))
	assert.ErrorIs(t, err, errDBNotInitialized)
	_, err = db.ListRuns("", 0)
	assert.ErrorIs(t, err, errDBNotInitialized)
	_, err = db.GetRemovals(1)
	assert.ErrorIs(t, err, errDBNotInitialized)
	assert.NoError(t, db.Close())

	db = setupTestAudit(t)
	_, err = db.SaveRun(nil)
	assert.Error(t, err)
	_, err = db.SaveRun(&AuditRun{})
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE b = ? AND c = ?"

	lite := &AuditDB{driver: driverSQLite}
	assert.Equal(t, q, lite.rebind(q))

	pg := &AuditDB{driver: driverPostgres}
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c = $2", pg.rebind(q))
}

func TestDriverFor(t *testing.T) {
	assert.Equal(t, driverPostgres, driverFor("postgres://u:p@localhost/db"))
	assert.Equal(t, driverPostgres, driverFor("postgresql://localhost/db"))
	assert.Equal(t, driverSQLite, driverFor("/tmp/audit.db"))
}
