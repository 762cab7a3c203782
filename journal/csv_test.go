package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVJournal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ordersPath := filepath.Join(dir, "orders.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(ordersPath, equityPath)
	require.NoError(t, err)

	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordOrder(OrderRecord{
		OrderID: "O1", RunID: "R1", Symbol: "AAPL", Side: "buy",
		Quantity: 7, Price: 20, Time: ts,
	}))
	require.NoError(t, j.RecordEquity(EquitySnapshot{
		RunID: "R1", Time: ts, Cash: 860, Equity: 1000,
	}))
	require.NoError(t, j.RecordRun(RunRecord{RunID: "R1"}))
	require.NoError(t, j.Close())

	orders, err := os.ReadFile(ordersPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(orders)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "order_id,run_id,symbol,side,quantity,price,time", lines[0])
	assert.Equal(t, "O1,R1,AAPL,buy,7,20,2024-01-02T00:00:00Z", lines[1])

	equity, err := os.ReadFile(equityPath)
	require.NoError(t, err)
	elines := strings.Split(strings.TrimSpace(string(equity)), "\n")
	require.Len(t, elines, 2)
	assert.Equal(t, "R1,2024-01-02T00:00:00Z,860,1000", elines[1])
}
