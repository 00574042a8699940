// 包 tabular：读取 CSV/XLSX 表格为字符串行，并提供单元格文本规范化
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

var ErrUnsupportedFormat = errors.New("tabular: unsupported file format")

// Read：按扩展名读取表格的全部行
// 约束：.csv 使用逗号分隔；.xlsx/.xlsm 读取 sheet 指定的工作表，为空时取第一个工作表；
// 行长度不做对齐，由调用方按表头校验
func Read(path, sheet string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSV(f)
	case ".xlsx", ".xlsm":
		return readXLSX(path, sheet)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ReadCSV：读取 CSV 内容，去掉首个单元格的 UTF-8 BOM
func ReadCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("tabular: read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("tabular: open xlsx: %w", err)
	}
	defer f.Close()
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("tabular: read sheet %q: %w", sheet, err)
	}
	// excelize 会截断行尾空单元格，这里按最宽行补齐，与 CSV 行为一致
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	for i, r := range rows {
		if len(r) < width {
			rows[i] = append(r, make([]string, width-len(r))...)
		}
	}
	return rows, nil
}

// Text：单元格文本规范化（NFC、合并连续空白、去首尾空白）
// 约束：用于地点名称等连接键，两侧输入必须使用同一规范化
func Text(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}
