package pipeline

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// utf8BOM выгрузки читаются и пишутся с BOM: файлы открывают в Excel
const utf8BOM = "\xef\xbb\xbf"

// Table промежуточный слой конвейера: колонки и строки как есть.
// Слои строго аддитивны — существующие колонки не изменяются и не
// удаляются, новые добавляются в конец.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex позиция колонки по имени, -1 если колонки нет
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value значение ячейки по индексу колонки; -1 и короткие строки дают ""
func (t *Table) Value(row int, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// ValueByName значение ячейки по имени колонки
func (t *Table) ValueByName(row int, name string) string {
	return t.Value(row, t.ColumnIndex(name))
}

// AddColumn добавляет колонку со значениями по числу строк
func (t *Table) AddColumn(name string, values []string) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("колонка %s: %d значений на %d строк", name, len(values), len(t.Rows))
	}
	if t.ColumnIndex(name) >= 0 {
		return fmt.Errorf("колонка %s уже существует", name)
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

// FilterRows новая таблица из строк, прошедших предикат; колонки общие
func (t *Table) FilterRows(keep func(row int) bool) *Table {
	out := &Table{Columns: t.Columns}
	for i := range t.Rows {
		if keep(i) {
			out.Rows = append(out.Rows, t.Rows[i])
		}
	}
	return out
}

// ReadCSV читает таблицу из CSV (BOM допускается)
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if bom, err := br.Peek(3); err == nil && string(bom) == utf8BOM {
		br.Discard(3)
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1

	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать CSV %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("CSV %s пуст", path)
	}

	table := &Table{Columns: all[0]}
	for _, row := range all[1:] {
		// Выравниваем строку по числу колонок
		values := make([]string, len(table.Columns))
		for i := range values {
			if i < len(row) {
				values[i] = row[i]
			}
		}
		table.Rows = append(table.Rows, values)
	}
	return table, nil
}

// WriteCSV пишет таблицу в CSV с BOM
func WriteCSV(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString(utf8BOM); err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// safeFileNamePattern символы, недопустимые в именах файлов
var safeFileNameReplacer = strings.NewReplacer(
	"\\", "_", "/", "_", ":", "_", "*", "_",
	"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
)

// safeFileName имя файла из имени клиента, не длиннее 80 рун
func safeFileName(name string) string {
	s := safeFileNameReplacer.Replace(name)
	runes := []rune(s)
	if len(runes) > 80 {
		return string(runes[:80])
	}
	return s
}
