package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const irisSample = "sepal_len,sepal_wid,petal_len\n5.1,3.5,1.4\n4.9,3.0,1.4\n6.2,2.9,4.3\n"

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func zstdBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := enc.EncodeAll(data, nil)
	require.NoError(t, enc.Close())
	return compressed
}

func TestLoadCSVWithHeader(t *testing.T) {
	table, err := Load(writeFile(t, "iris.csv", []byte(irisSample)))
	require.NoError(t, err)

	rows, cols := table.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, []string{"sepal_len", "sepal_wid", "petal_len"}, table.Names)
	assert.InDelta(t, 4.9, table.Data.At(1, 0), 1e-12)
}

func TestLoadCSVWithoutHeader(t *testing.T) {
	table, err := Load(writeFile(t, "plain.csv", []byte("1,2\n3,4\n")))
	require.NoError(t, err)

	rows, _ := table.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, []string{"col0", "col1"}, table.Names)
	assert.Equal(t, 3.0, table.Data.At(1, 0))
}

func TestLoadZstdCSV(t *testing.T) {
	path := writeFile(t, "iris.csv.zst", zstdBytes(t, []byte(irisSample)))

	table, err := Load(path)
	require.NoError(t, err)

	rows, cols := table.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"x", "y"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{1.5, 2.5}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{3.0, 4.0}))

	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y"}, table.Names)
	rows, cols := table.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 2.5, table.Data.At(0, 1))
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load(writeFile(t, "data.txt", []byte("1,2\n")))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadBadCell(t *testing.T) {
	_, err := Load(writeFile(t, "bad.csv", []byte("a,b\n1,notanumber\n")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "b"`)
}

func TestColumnsAndSubset(t *testing.T) {
	table, err := Load(writeFile(t, "iris.csv", []byte(irisSample)))
	require.NoError(t, err)

	cols, err := table.Columns("petal_len", "sepal_len")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0}, cols)

	sub, err := table.Subset(cols)
	require.NoError(t, err)
	r, c := sub.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 1.4, sub.At(0, 0))
	assert.Equal(t, 5.1, sub.At(0, 1))

	_, err = table.Columns("nope")
	assert.Error(t, err)

	_, err = table.Subset([]int{5})
	assert.Error(t, err)
}

func TestFetchCSV(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(irisSample))
	}))
	t.Cleanup(ts.Close)

	table, err := Fetch(context.Background(), ts.URL+"/iris.csv")
	require.NoError(t, err)

	rows, _ := table.Dims()
	assert.Equal(t, 3, rows)
}

func TestFetchZstd(t *testing.T) {
	compressed := zstdBytes(t, []byte(irisSample))
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(compressed)
	}))
	t.Cleanup(ts.Close)

	table, err := Fetch(context.Background(), ts.URL+"/iris.csv.zst")
	require.NoError(t, err)

	rows, cols := table.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)
}

func TestFetchHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(ts.Close)

	_, err := Fetch(context.Background(), ts.URL+"/missing.csv")
	require.Error(t, err)
}
