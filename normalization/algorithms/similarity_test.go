package algorithms

import (
	"math"
	"testing"
)

func TestTitleSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"оба пустые", "", "", 0},
		{"один пустой", "", "智算平台", 0},
		{"отношение длин ниже порога", "平台", "智算平台扩容建设项目", 0},
		{"вложенность при сопоставимой длине", "智算平台扩容项目", "智算平台扩容项目一期", ContainmentScore},
		{"идентичные строки проходят как вложенность", "云资源池建设", "云资源池建设", ContainmentScore},
		{"полностью разные при равной длине", "甲乙丙丁", "戊己庚辛", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TitleSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TitleSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTitleSimilarity_LCSRatio(t *testing.T) {
	// Вложенность не срабатывает (отношение длин 6/8 < 0.8),
	// работает LCS: 2*6/(6+8)
	got := TitleSimilarity("算力平台建设项目", "算力平台建设")
	want := 2.0 * 6.0 / 14.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("TitleSimilarity = %v, want %v", got, want)
	}
}

func TestTitleSimilarity_Symmetry(t *testing.T) {
	a, b := "数据中台升级改造项目", "数据中台改造升级项目"
	if TitleSimilarity(a, b) != TitleSimilarity(b, a) {
		t.Errorf("схожесть несимметрична: %v vs %v", TitleSimilarity(a, b), TitleSimilarity(b, a))
	}
}

func TestTitleSimilarity_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"智算中心算力扩容", "智算中心扩容"},
		{"办公楼装修改造工程", "办公楼装修工程"},
		{"a", "b"},
		{"相同", "相同"},
	}
	for _, p := range pairs {
		got := TitleSimilarity(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("TitleSimilarity(%q, %q) = %v, вне [0, 1]", p[0], p[1], got)
		}
	}
}

func TestLongestCommonSubsequence(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"abcde", "ace", 3},
		{"abc", "abc", 3},
		{"abc", "def", 0},
		{"", "abc", 0},
		{"数据中台项目", "数据平台项目", 5},
	}

	for _, tt := range tests {
		got := longestCommonSubsequence([]rune(tt.a), []rune(tt.b))
		if got != tt.want {
			t.Errorf("longestCommonSubsequence(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
