package jptext

import "testing"

func TestRuneClasses(t *testing.T) {
	tests := []struct {
		r        rune
		kanji    bool
		hiragana bool
		katakana bool
	}{
		{'漢', true, false, false},
		{'一', true, false, false},
		{'あ', false, true, false},
		{'ん', false, true, false},
		{'ア', false, false, true},
		{'ヶ', false, false, true},
		{'ー', false, true, true},
		{'A', false, false, false},
		{'。', false, false, false},
		{'1', false, false, false},
	}
	for _, tt := range tests {
		if got := IsKanji(tt.r); got != tt.kanji {
			t.Errorf("IsKanji(%q) = %v", tt.r, got)
		}
		if got := IsHiragana(tt.r); got != tt.hiragana {
			t.Errorf("IsHiragana(%q) = %v", tt.r, got)
		}
		if got := IsKatakana(tt.r); got != tt.katakana {
			t.Errorf("IsKatakana(%q) = %v", tt.r, got)
		}
	}
}

func TestContainsKanjiAndCount(t *testing.T) {
	if !ContainsKanji("彼はあおま") {
		t.Error("ContainsKanji missed 彼")
	}
	if ContainsKanji("ひらがなカタカナ123") {
		t.Error("ContainsKanji false positive")
	}
	if got := KanjiCount("黒羽涼介は走った"); got != 5 {
		t.Errorf("KanjiCount = %d, want 5", got)
	}
	if got := KanjiCount("かな"); got != 0 {
		t.Errorf("KanjiCount = %d, want 0", got)
	}
}

func TestIsKanaOnly(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"そうま", true},
		{"ソーマ", true},
		{"そうマ", true},
		{"蒼真", false},
		{"そう真", false},
		{"そうま。", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsKanaOnly(tt.s); got != tt.want {
			t.Errorf("IsKanaOnly(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestIsHiraganaSentence(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"かれはしずかにうなずいた。", true},
		{"そう、だった！", true},
		{"かれは 頷いた", false},
		{"カタカナです", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsHiraganaSentence(tt.s); got != tt.want {
			t.Errorf("IsHiraganaSentence(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestKatakanaToHiragana(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ソウマ", "そうま"},
		{"クロバ・リョースケ", "くろば・りょーすけ"},
		{"そのまま", "そのまま"},
		{"漢字ハ残ル", "漢字は残る"},
	}
	for _, tt := range tests {
		if got := KatakanaToHiragana(tt.in); got != tt.want {
			t.Errorf("KatakanaToHiragana(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
