package importer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// tianyanchaHeaderRow строка заголовков в выгрузке 天眼查 (нумерация с 1):
// первые шесть строк занимает шапка экспорта
const tianyanchaHeaderRow = 7

// Имена колонок выгрузки и фолбэки по позиции на случай переименования
const (
	ColumnProjectName = "项目名称"
	ColumnPublishDate = "发布日期"
	ColumnAmount      = "中标金额"
	ColumnAwardee     = "中标单位"
)

const (
	fallbackProjectNameIdx = 1
	fallbackAmountIdx      = 5
)

// customerFilePattern имя файла выгрузки:
// 【天眼查】招投标(不包含拟建)-<клиент>(<номер>).xlsx
var customerFilePattern = regexp.MustCompile(`^【天眼查】招投标\(不包含拟建\)-(.+?)\(\d+.*\)\.xlsx$`)

// Sheet табличная выгрузка: колонки и строки как есть, без потерь —
// слой очистки обязан сохранить все исходные колонки
type Sheet struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex позиция колонки по имени, -1 если нет
func (s *Sheet) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ColumnIndexOr позиция колонки по имени, либо фолбэк по позиции
func (s *Sheet) ColumnIndexOr(name string, fallback int) int {
	if i := s.ColumnIndex(name); i >= 0 {
		return i
	}
	if fallback >= 0 && fallback < len(s.Columns) {
		return fallback
	}
	return -1
}

// Cell значение ячейки; выход за границы короткой строки дает пустую строку
func (s *Sheet) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// ProjectNameIndex колонка названия проекта с фолбэком по позиции
func (s *Sheet) ProjectNameIndex() int {
	return s.ColumnIndexOr(ColumnProjectName, fallbackProjectNameIdx)
}

// AmountIndex колонка суммы с фолбэком по позиции
func (s *Sheet) AmountIndex() int {
	return s.ColumnIndexOr(ColumnAmount, fallbackAmountIdx)
}

// CustomerFromFilename извлекает имя клиента из имени файла выгрузки.
// Если имя не соответствует шаблону — возвращается само имя файла.
func CustomerFromFilename(filename string) string {
	if m := customerFilePattern.FindStringSubmatch(filename); m != nil {
		return strings.TrimSpace(m[1])
	}
	return filename
}

// ParseTianyanchaExcel читает первый лист выгрузки 天眼查: шапка экспорта
// пропускается, полностью пустые строки отбрасываются
func ParseTianyanchaExcel(path string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть файл Excel: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("в файле Excel нет листов")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать строки листа: %w", err)
	}
	return sheetFromRows(rows)
}

// sheetFromRows собирает Sheet из сырых строк листа
func sheetFromRows(rows [][]string) (*Sheet, error) {
	if len(rows) < tianyanchaHeaderRow {
		return nil, fmt.Errorf("лист короче строки заголовков (%d строк)", len(rows))
	}

	header := rows[tianyanchaHeaderRow-1]
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	sheet := &Sheet{Columns: columns}
	for _, row := range rows[tianyanchaHeaderRow:] {
		if rowIsEmpty(row) {
			continue
		}
		// Выравниваем строку по числу колонок
		values := make([]string, len(columns))
		for i := range columns {
			if i < len(row) {
				values[i] = strings.TrimSpace(row[i])
			}
		}
		sheet.Rows = append(sheet.Rows, values)
	}
	return sheet, nil
}

func rowIsEmpty(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
