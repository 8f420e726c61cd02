package excel

// FileType identifies the tabular format of an upload
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
)

// Extension returns the file extension used when storing this type
func (t FileType) Extension() string {
	return "." + string(t)
}

// ExcelData represents a header row plus the raw string cells beneath it
type ExcelData struct {
	Headers []string   // Column headers as written
	Rows    [][]string // Data rows in file order
	Lines   []int      // 1-based source line of each data row
}

// Line returns the source line of data row i. Without recorded positions
// rows are assumed to follow the header with no gaps.
func (d *ExcelData) Line(i int) int {
	if i < len(d.Lines) {
		return d.Lines[i]
	}
	return i + 2
}

// ColumnIndex returns the position of an exactly matching header, or -1
func (d *ExcelData) ColumnIndex(name string) int {
	for i, h := range d.Headers {
		if h == name {
			return i
		}
	}
	return -1
}
