package linking

import "testing"

func TestParsePublishDate(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		wantOK bool
	}{
		{"ISO-дата", "2024-05-07", true},
		{"ISO с временем", "2024-05-07 10:30:00", true},
		{"ISO с временем без секунд", "2024-05-07 10:30", true},
		{"косые черты", "2024/05/07", true},
		{"точки", "2024.05.07", true},
		{"китайский формат", "2024年05月07日", true},
		{"китайский формат без нулей", "2024年5月7日", true},
		{"пустая строка", "", false},
		{"прочерк", "-", false},
		{"nan", "nan", false},
		{"мусор", "дата неизвестна", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePublishDate(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ParsePublishDate(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if ok && got.IsZero() {
				t.Errorf("ParsePublishDate(%q) вернула нулевое время при ok", tt.raw)
			}
		})
	}
}

func TestParsePublishDate_SameDayAcrossLayouts(t *testing.T) {
	a, _ := ParsePublishDate("2024-05-07")
	b, _ := ParsePublishDate("2024年5月7日")
	if !a.Equal(b) {
		t.Errorf("одна дата в разных форматах разобрана по-разному: %v vs %v", a, b)
	}
}

func TestIsTenderTypeIsBidType(t *testing.T) {
	for _, rt := range []string{"招标公告", "采购公告", "竞争性谈判", "竞争性磋商", "询价"} {
		if !IsTenderType(rt) {
			t.Errorf("IsTenderType(%q) = false, want true", rt)
		}
		if IsBidType(rt) {
			t.Errorf("IsBidType(%q) = true, want false", rt)
		}
	}
	for _, rt := range []string{"中标公告", "中标候选人公示", "成交结果", "成交公告", "结果公示"} {
		if !IsBidType(rt) {
			t.Errorf("IsBidType(%q) = false, want true", rt)
		}
		if IsTenderType(rt) {
			t.Errorf("IsTenderType(%q) = true, want false", rt)
		}
	}
	if IsTenderType("其他") || IsBidType("其他") {
		t.Error("其他 не должен относиться ни к одному классу")
	}
}
