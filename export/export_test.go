package export

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/goleak"

	"github.com/uyouii/welllog/common"
	"github.com/uyouii/welllog/las"
	"github.com/uyouii/welllog/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// newTestDataset is stored with descending depths to check exports come out ascending.
func newTestDataset(t *testing.T) *model.LogDataset {
	t.Helper()
	ds, err := model.NewLogDataset(
		model.WellInfo{Well: "CANTON SWD #1", Field: "BITIKOFER", Null: model.DefaultNullValue},
		model.Sections{Well: []model.HeaderItem{
			{Mnemonic: "WELL", Value: "CANTON SWD #1", Description: "WELL"},
			{Mnemonic: "NULL", Value: "-999.25"},
		}},
		model.CurveInfo{Mnemonic: "DEPT", Unit: "F", Description: "Measured Depth"},
		[]float64{102, 101.5, 101, 100.5},
		[]model.Curve{
			{CurveInfo: model.CurveInfo{Mnemonic: "GR", Unit: "GAPI"}, Samples: []float64{30, -999.25, 20, 10.5}},
			{CurveInfo: model.CurveInfo{Mnemonic: "RHOB", Unit: "G/C3"}, Samples: []float64{2.6, 2.5, math.NaN(), 2.3}},
		},
	)
	require.NoError(t, err)
	return ds
}

var wantRecords = [][]string{
	{"DEPTH", "GR", "RHOB"},
	{"100.5", "10.5", "2.3"},
	{"101", "20", ""},
	{"101.5", "", "2.5"},
	{"102", "30", "2.6"},
}

func TestWriteCSV(t *testing.T) {
	table, err := newTestDataset(t).DerivedTable()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	if diff := cmp.Diff(wantRecords, records); diff != "" {
		t.Errorf("csv records mismatch (-want +got):\n%s", diff)
	}
}

func TestExport_CSV(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "well.csv")
	require.NoError(t, Export(context.Background(), newTestDataset(t), dest, ""))

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, wantRecords, records)

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary file left behind")

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestExport_XLSX(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "well.xlsx")
	require.NoError(t, Export(context.Background(), newTestDataset(t), dest, FormatXLSX))

	f, err := excelize.OpenFile(dest)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(dataSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"DEPTH", "GR", "RHOB"}, rows[0])
	assert.Equal(t, "10.5", rows[1][1])
	assert.Equal(t, []string{"101", "20"}, rows[2])
	assert.Equal(t, []string{"101.5", "", "2.5"}, rows[3])

	curves, err := f.GetRows(curvesSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"DEPTH", "F", "Measured Depth"}, curves[1])
	assert.Len(t, curves, 4)

	props, err := f.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, "CANTON SWD #1", props.Title)
	assert.NotEmpty(t, props.Identifier)
}

func TestExport_LAS(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "well.las")
	require.NoError(t, Export(context.Background(), newTestDataset(t), dest, ""))

	ds, err := las.Load(context.Background(), dest)
	require.NoError(t, err)
	assert.Equal(t, []string{"GR", "RHOB"}, ds.Mnemonics())
	assert.Equal(t, 4, ds.Len())
}

func TestExport_SQLite(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "well.db")
	require.NoError(t, Export(context.Background(), newTestDataset(t), dest, ""))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	db, err := sql.Open("sqlite", dest)
	require.NoError(t, err)
	defer db.Close()

	var count, missing int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM log_data").Scan(&count))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM log_data WHERE "GR" IS NULL`).Scan(&missing))
	assert.Equal(t, 4, count)
	assert.Equal(t, 1, missing)

	var rhob sql.NullFloat64
	require.NoError(t, db.QueryRow(`SELECT "RHOB" FROM log_data WHERE "DEPTH" = 101`).Scan(&rhob))
	assert.False(t, rhob.Valid)

	var curves int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM curves").Scan(&curves))
	assert.Equal(t, 3, curves)

	var id, well string
	require.NoError(t, db.QueryRow("SELECT id, well FROM export_info").Scan(&id, &well))
	assert.Len(t, id, 36)
	assert.Equal(t, "CANTON SWD #1", well)
}

func TestExport_Errors(t *testing.T) {
	ds := newTestDataset(t)
	dir := t.TempDir()

	err := Export(context.Background(), ds, filepath.Join(dir, "missing", "well.csv"), "")
	assert.ErrorIs(t, err, common.ErrorIO)

	err = Export(context.Background(), ds, filepath.Join(dir, "well.parquet"), "")
	assert.ErrorIs(t, err, common.ErrorConfig)

	err = Export(context.Background(), ds, filepath.Join(dir, "well.out"), Format("json"))
	assert.ErrorIs(t, err, common.ErrorConfig)

	// an existing destination is left untouched when the export fails
	dest := filepath.Join(dir, "keep.csv")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))
	clash, err := ds.RenameCurve("GR", model.DepthColumn)
	require.NoError(t, err)
	err = Export(context.Background(), clash, dest, "")
	assert.ErrorIs(t, err, common.ErrorConfig)
	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "old", string(content))
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]Format{
		"a.csv": FormatCSV, "a.XLSX": FormatXLSX, "a.las": FormatLAS, "a.sqlite": FormatSQLite, "a.db": FormatSQLite,
	} {
		got, err := FormatOf(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := ParseFormat("Parquet")
	assert.ErrorIs(t, err, common.ErrorConfig)
	f, err := ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
}
