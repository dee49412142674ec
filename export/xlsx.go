package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/tripjeju/courseapi/course"
)

// SheetName is the worksheet holding the itinerary.
const SheetName = "Itinerary"

var header = []string{"Day", "Date", "Seq", "Title", "Category", "Address"}

// XLSX renders it as a workbook with one row per content item.
func XLSX(it *course.Itinerary) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("export xlsx: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("export xlsx: %w", err)
	}

	for _, w := range []struct {
		from, to string
		width    float64
	}{{"A", "C", 8}, {"D", "D", 32}, {"E", "E", 16}, {"F", "F", 48}} {
		if err := f.SetColWidth(SheetName, w.from, w.to, w.width); err != nil {
			return nil, fmt.Errorf("export xlsx: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("export xlsx: %w", err)
	}

	for i, h := range header {
		if err := f.SetCellValue(SheetName, cell(i, 1), h); err != nil {
			return nil, fmt.Errorf("export xlsx: %w", err)
		}
	}
	if err := f.SetCellStyle(SheetName, cell(0, 1), cell(len(header)-1, 1), headerStyle); err != nil {
		return nil, fmt.Errorf("export xlsx: %w", err)
	}

	row := 2
	for day, dp := range it.Plans {
		for _, item := range dp.Contents {
			values := []any{day + 1, dp.Date, item.Sequence, item.Title, item.Category, item.Address}
			for i, v := range values {
				if err := f.SetCellValue(SheetName, cell(i, row), v); err != nil {
					return nil, fmt.Errorf("export xlsx: %w", err)
				}
			}
			row++
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("export xlsx: %w", err)
	}
	return buf, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}

// Filename is the download name of an export of courseID.
func Filename(courseID int64, ext string) string {
	return fmt.Sprintf("course-%d.%s", courseID, ext)
}
