package excel

import (
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		filename string
		want     FileType
		hasError bool
	}{
		{"xa.s12.00.mhz.1970-01-19HR00_evid00002.csv", FileTypeCSV, false},
		{"EVENTS.CSV", FileTypeCSV, false},
		{"trace.xlsx", FileTypeXLSX, false},
		{"trace.xls", "", true},
		{"trace.mseed", "", true},
		{"noextension", "", true},
	}

	for _, tt := range tests {
		got, err := DetectFileType(tt.filename)
		if tt.hasError {
			assert.Error(t, err, tt.filename)
			continue
		}
		require.NoError(t, err, tt.filename)
		assert.Equal(t, tt.want, got)
	}
}

func TestReadCSVData(t *testing.T) {
	src := "\ufefftime_abs(%Y-%m-%dT%H:%M:%S.%f),time_rel(sec),velocity(m/s)\n" +
		"1970-01-19T00:00:00.665000,0.0,-6.153278962788711e-14\n" +
		"1970-01-19T00:00:00.815943,0.1509433962264151,-7.70128843364098e-14\n"

	data, err := NewDataReader(FileTypeCSV, discardLogger()).ReadData(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"time_abs(%Y-%m-%dT%H:%M:%S.%f)", "time_rel(sec)", "velocity(m/s)"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "0.1509433962264151", data.Rows[1][1])
	assert.Equal(t, 2, data.ColumnIndex("velocity(m/s)"))
	assert.Equal(t, -1, data.ColumnIndex("velocity"))
}

func TestReadCSVKeepsHeadersVerbatim(t *testing.T) {
	data, err := NewDataReader(FileTypeCSV, discardLogger()).ReadData(strings.NewReader(" time_rel(sec),velocity(m/s)\n0,1\n"))
	require.NoError(t, err)
	assert.Equal(t, -1, data.ColumnIndex("time_rel(sec)"))
}

func TestReadCSVRecordsSourceLines(t *testing.T) {
	src := "time_rel(sec),velocity(m/s)\n0,1\n\n\n1,2\n2,3\n"

	data, err := NewDataReader(FileTypeCSV, discardLogger()).ReadData(strings.NewReader(src))
	require.NoError(t, err)

	require.Len(t, data.Rows, 3)
	assert.Equal(t, []int{2, 5, 6}, data.Lines)
	assert.Equal(t, 5, data.Line(1))
}

func TestExcelDataLineWithoutPositions(t *testing.T) {
	data := &ExcelData{Rows: [][]string{{"0", "1"}, {"1", "2"}}}
	assert.Equal(t, 3, data.Line(1))
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := NewDataReader(FileTypeCSV, discardLogger()).ReadData(strings.NewReader(""))
	assert.Error(t, err)
}

func TestReadExcelData(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "time_rel(sec)"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "velocity(m/s)"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", 0.0))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 1.25e-9))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", 0.5))
	require.NoError(t, f.SetCellValue("Sheet1", "B3", -3.5e-9))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	data, err := NewDataReader(FileTypeXLSX, discardLogger()).ReadData(buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"time_rel(sec)", "velocity(m/s)"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "0.5", data.Rows[1][0])
	v, err := strconv.ParseFloat(data.Rows[1][1], 64)
	require.NoError(t, err)
	assert.InDelta(t, -3.5e-9, v, 1e-21)
}

func TestReadExcelRejectsGarbage(t *testing.T) {
	_, err := NewDataReader(FileTypeXLSX, discardLogger()).ReadData(strings.NewReader("not a zip archive"))
	assert.Error(t, err)
}
