package dataset

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"seismicview/adapters/excel"
	"seismicview/domain/seismic"
	"seismicview/internal/errors"
)

// LoadSeries reads an uploaded table and extracts the time and velocity columns.
func LoadSeries(src io.Reader, fileType excel.FileType, logger *slog.Logger) (seismic.Series, error) {
	data, err := excel.NewDataReader(fileType, logger).ReadData(src)
	if err != nil {
		return seismic.Series{}, errors.WithCode(errors.CodeInvalidInput, err)
	}
	return ParseSeries(data)
}

// ParseSeries converts the required columns of data into a Series. Column
// names must match exactly; every other column is ignored.
func ParseSeries(data *excel.ExcelData) (seismic.Series, error) {
	timeCol := data.ColumnIndex(seismic.TimeColumn)
	if timeCol < 0 {
		return seismic.Series{}, errors.InvalidInput(fmt.Sprintf("missing column %q", seismic.TimeColumn))
	}
	velocityCol := data.ColumnIndex(seismic.VelocityColumn)
	if velocityCol < 0 {
		return seismic.Series{}, errors.InvalidInput(fmt.Sprintf("missing column %q", seismic.VelocityColumn))
	}

	series := seismic.Series{
		Time:     make([]float64, 0, len(data.Rows)),
		Velocity: make([]float64, 0, len(data.Rows)),
	}
	for i, row := range data.Rows {
		line := data.Line(i)
		if isBlankRow(row) {
			continue
		}
		t, err := parseCell(row, timeCol, line, seismic.TimeColumn)
		if err != nil {
			return seismic.Series{}, err
		}
		v, err := parseCell(row, velocityCol, line, seismic.VelocityColumn)
		if err != nil {
			return seismic.Series{}, err
		}
		series.Time = append(series.Time, t)
		series.Velocity = append(series.Velocity, v)
	}

	if err := series.Validate(); err != nil {
		return seismic.Series{}, err
	}
	return series, nil
}

func parseCell(row []string, col, line int, name string) (float64, error) {
	if col >= len(row) || strings.TrimSpace(row[col]) == "" {
		return 0, errors.InvalidInput(fmt.Sprintf("line %d: empty %s value", line, name))
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
	if err != nil {
		return 0, errors.InvalidInput(fmt.Sprintf("line %d: %s value %q is not numeric", line, name, row[col]))
	}
	return v, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
