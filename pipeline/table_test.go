package pipeline

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestTable_CSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	src := &Table{
		Columns: []string{"项目名称", "发布日期", "中标金额"},
		Rows: [][]string{
			{"智算中心算力扩容项目招标公告", "2024-01-10", ""},
			{"智算中心算力扩容项目中标公告", "2024-02-20", "120.5万元"},
		},
	}
	if err := WriteCSV(path, src); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	got, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if !reflect.DeepEqual(got.Columns, src.Columns) {
		t.Errorf("Columns = %v, want %v", got.Columns, src.Columns)
	}
	if !reflect.DeepEqual(got.Rows, src.Rows) {
		t.Errorf("Rows = %v, want %v", got.Rows, src.Rows)
	}
}

func TestWriteCSV_AddsBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.csv")

	if err := WriteCSV(path, &Table{Columns: []string{"a"}}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), utf8BOM) {
		t.Error("файл должен начинаться с UTF-8 BOM")
	}
}

func TestReadCSV_WithoutBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if got.Value(0, 0) != "1" || got.Value(0, 1) != "2" {
		t.Errorf("Rows = %v", got.Rows)
	}
}

func TestReadCSV_AlignsShortRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.csv")
	if err := os.WriteFile(path, []byte("a,b,c\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(got.Rows[0]) != 3 {
		t.Errorf("строка не выровнена: %v", got.Rows[0])
	}
	if got.Value(0, 2) != "" {
		t.Errorf("недостающая ячейка = %q, want пусто", got.Value(0, 2))
	}
}

func TestTable_AddColumn(t *testing.T) {
	table := &Table{Columns: []string{"a"}, Rows: [][]string{{"1"}, {"2"}}}

	if err := table.AddColumn("b", []string{"x", "y"}); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	if table.ValueByName(1, "b") != "y" {
		t.Errorf("ValueByName(1, b) = %q, want y", table.ValueByName(1, "b"))
	}

	if err := table.AddColumn("b", []string{"x", "y"}); err == nil {
		t.Error("повторная колонка должна давать ошибку")
	}
	if err := table.AddColumn("c", []string{"только одно"}); err == nil {
		t.Error("неверное число значений должно давать ошибку")
	}
}

func TestTable_FilterRows(t *testing.T) {
	table := &Table{
		Columns: []string{"customer"},
		Rows:    [][]string{{"甲"}, {"乙"}, {"甲"}},
	}
	got := table.FilterRows(func(row int) bool { return table.Value(row, 0) == "甲" })
	if len(got.Rows) != 2 {
		t.Errorf("строк = %d, want 2", len(got.Rows))
	}
}

func TestTable_ValueOutOfRange(t *testing.T) {
	table := &Table{Columns: []string{"a"}, Rows: [][]string{{"1"}}}
	if got := table.Value(5, 0); got != "" {
		t.Errorf("Value за границами = %q, want пусто", got)
	}
	if got := table.ValueByName(0, "нет такой"); got != "" {
		t.Errorf("ValueByName по отсутствующей колонке = %q, want пусто", got)
	}
}

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"中国移动通信集团", "中国移动通信集团"},
		{"甲/乙:丙", "甲_乙_丙"},
		{`a\b*c?`, "a_b_c_"},
	}
	for _, tt := range tests {
		if got := safeFileName(tt.in); got != tt.want {
			t.Errorf("safeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := strings.Repeat("长", 100)
	if n := len([]rune(safeFileName(long))); n != 80 {
		t.Errorf("длина = %d рун, want 80", n)
	}
}
