package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriteResult(t *testing.T) {
	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	ordersPath := filepath.Join(dir, "orders.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, ordersPath, equityPath)
	require.NoError(t, err)

	res := sampleResult()
	runID, err := WriteResult(j, "macd-trend", res)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	trades := readCSV(t, tradesPath)
	require.Len(t, trades, 3) // header + 2 trades
	assert.Equal(t, "record_id", trades[0][0])
	assert.Equal(t, runID, trades[1][1])
	assert.Equal(t, "long", trades[1][4])
	assert.Equal(t, "1000", trades[1][5])
	assert.Equal(t, "10", trades[1][10])
	assert.Equal(t, "TakeProfit", trades[1][12])

	orders := readCSV(t, ordersPath)
	require.Len(t, orders, 4) // header + 3 position records
	assert.Equal(t, "CLOSED", orders[1][4])
	assert.Equal(t, "CANCELLED", orders[3][4])
	assert.Equal(t, "end of data", orders[3][7])

	equity := readCSV(t, equityPath)
	require.Len(t, equity, 4) // header + 3 samples
	assert.Equal(t, "1000", equity[1][2])
	assert.Equal(t, "1005", equity[2][4])
}

func TestCSVCreateFailure(t *testing.T) {
	dir := t.TempDir()
	_, err := NewCSV(
		filepath.Join(dir, "missing", "trades.csv"),
		filepath.Join(dir, "orders.csv"),
		filepath.Join(dir, "equity.csv"),
	)
	assert.Error(t, err)
}
