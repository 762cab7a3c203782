package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLiteJournal, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('orders','equity','runs')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	assert.True(t, found["orders"])
	assert.True(t, found["equity"])
	assert.True(t, found["runs"])
}

func TestSQLiteOrderRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	rec := OrderRecord{
		OrderID:  "O1",
		RunID:    "R1",
		Symbol:   "AAPL",
		Side:     "buy",
		Quantity: 7,
		Price:    20,
		Time:     ts,
	}
	require.NoError(t, j.RecordOrder(rec))
	require.NoError(t, j.RecordOrder(OrderRecord{
		OrderID: "O2", RunID: "R1", Symbol: "AAPL", Side: "sell",
		Quantity: 7, Price: 25, Time: ts.AddDate(0, 0, 1),
	}))
	require.NoError(t, j.RecordOrder(OrderRecord{
		OrderID: "O3", RunID: "R2", Symbol: "MSFT", Side: "buy",
		Quantity: 1, Price: 300, Time: ts,
	}))

	got, err := j.ListOrdersByRun("R1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "O1", got[0].OrderID)
	assert.Equal(t, int64(7), got[0].Quantity)
	assert.Equal(t, 20.0, got[0].Price)
	assert.Equal(t, "O2", got[1].OrderID)

	day, err := j.ListOrdersBetween(ts, ts.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, day, 2) // O1 and O3, end exclusive
}

func TestSQLiteEquityRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, j.RecordEquity(EquitySnapshot{
			RunID:  "R1",
			Time:   base.AddDate(0, 0, i),
			Cash:   1000,
			Equity: 1000 + float64(i)*10,
		}))
	}

	got, err := j.ListEquityByRun("R1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 1000.0, got[0].Equity)
	assert.Equal(t, 1020.0, got[2].Equity)
}

func TestSQLiteRunRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	rec := RunRecord{
		RunID:        "R1",
		Created:      time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC),
		Strategy:     "bollinger-ma",
		Symbols:      2,
		Start:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		StartingCash: 1000,
		EndingCash:   1450,
		EndingEquity: 1450,
		Buys:         1,
		Sells:        1,
		Holds:        5,
		Skips:        29,
	}
	require.NoError(t, j.RecordRun(rec))

	got, err := j.GetRun("R1")
	require.NoError(t, err)
	assert.Equal(t, rec.Strategy, got.Strategy)
	assert.Equal(t, rec.EndingEquity, got.EndingEquity)
	assert.Equal(t, rec.Skips, got.Skips)
	assert.True(t, rec.Created.Equal(got.Created))

	_, err = j.GetRun("missing")
	assert.Error(t, err)
}
