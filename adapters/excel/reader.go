package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"seismicview/internal/logging"
)

// DataReader handles reading Excel and CSV uploads
type DataReader struct {
	fileType FileType
	logger   *slog.Logger
}

// DetectFileType maps a filename extension to a supported file type
func DetectFileType(filename string) (FileType, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		return FileTypeCSV, nil
	case ".xlsx":
		return FileTypeXLSX, nil
	default:
		return "", fmt.Errorf("unsupported file extension %q: only .csv and .xlsx are accepted", ext)
	}
}

// NewDataReader creates a reader for the given file type
func NewDataReader(fileType FileType, logger *slog.Logger) *DataReader {
	return &DataReader{fileType: fileType, logger: logging.Component(logger, "data_reader")}
}

// ReadData reads the header row and every data row from r
func (r *DataReader) ReadData(src io.Reader) (*ExcelData, error) {
	switch r.fileType {
	case FileTypeCSV:
		return r.readCSVData(src)
	case FileTypeXLSX:
		return r.readExcelData(src)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// readExcelData reads the first worksheet. Raw cell values are used so
// number formats cannot round the samples.
func (r *DataReader) readExcelData(src io.Reader) (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file has no worksheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	r.logger.Debug("sheet read", slog.String("sheet", sheets[0]), slog.Int("rows", len(rows)), slog.Duration("elapsed", time.Since(startTime)))

	// worksheet rows come back densely, so row i sits on sheet row i+1
	lines := make([]int, len(rows))
	for i := range lines {
		lines[i] = i + 1
	}
	return r.processRows(rows, lines)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData(src io.Reader) (*ExcelData, error) {
	startTime := time.Now()
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1

	// blank lines are skipped by the reader, so record where each record
	// starts for error messages
	var rows [][]string
	var lines []int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV file: %w", err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, record)
		lines = append(lines, line)
	}
	r.logger.Debug("csv read", slog.Int("rows", len(rows)), slog.Duration("elapsed", time.Since(startTime)))

	return r.processRows(rows, lines)
}

// processRows splits the header row from the data rows
func (r *DataReader) processRows(rows [][]string, lines []int) (*ExcelData, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s file is empty", strings.ToUpper(string(r.fileType)))
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		// Excel-exported CSVs often start with a byte order mark. Headers
		// are otherwise kept verbatim since column lookup is exact.
		if i == 0 {
			header = strings.TrimPrefix(header, "\ufeff")
		}
		headers[i] = header
	}

	return &ExcelData{
		Headers: headers,
		Rows:    rows[1:],
		Lines:   lines[1:],
	}, nil
}
