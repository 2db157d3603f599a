package parser

import "testing"

func TestClassifyParagraph(t *testing.T) {
	tests := []struct {
		text    string
		kind    Kind
		number  string
		chapter string
		title   string
	}{
		{"1 Введение в предметную область", NumberedChapter, "1", "", "Введение в предметную область"},
		{"12   Результаты", NumberedChapter, "12", "", "Результаты"},
		{"1.1 Постановка задачи", NumberedSection, "1.1", "1", "Постановка задачи"},
		{"2.3. Выбор архитектуры", NumberedSection, "2.3", "2", "Выбор архитектуры"},
		{"Выводы по главе 2", UnnumberedSection, "", "", "Выводы по главе 2"},
		{"ВЫВОДЫ ПО ГЛАВЕ 1", UnnumberedSection, "", "", "ВЫВОДЫ ПО ГЛАВЕ 1"},
		{"ЗАКЛЮЧЕНИЕ", UnnumberedChapter, "", "", "ЗАКЛЮЧЕНИЕ"},
		{"СПИСОК ИСПОЛЬЗОВАННЫХ ИСТОЧНИКОВ", UnnumberedChapter, "", "", "СПИСОК ИСПОЛЬЗОВАННЫХ ИСТОЧНИКОВ"},
		// all-caps body sentence without final punctuation is a heading
		{"ВНИМАНИЕ ДАННЫЕ УСТАРЕЛИ", UnnumberedChapter, "", "", "ВНИМАНИЕ ДАННЫЕ УСТАРЕЛИ"},
		{"ВНИМАНИЕ.", BodyText, "", "", "ВНИМАНИЕ."},
		{"ГОСТ 7.32 – ОТЧЕТ", BodyText, "", "", "ГОСТ 7.32 – ОТЧЕТ"},
		{"1. первый пункт списка", BodyText, "", "", "1. первый пункт списка"},
		{"12345", BodyText, "", "", "12345"},
		{"Обычный абзац текста.", BodyText, "", "", "Обычный абзац текста."},
		{"", BodyText, "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ClassifyParagraph(tt.text)
			if got.Kind != tt.kind {
				t.Fatalf("kind: expected %s, got %s", tt.kind, got.Kind)
			}
			if got.Number != tt.number {
				t.Errorf("number: expected %q, got %q", tt.number, got.Number)
			}
			if got.Chapter != tt.chapter {
				t.Errorf("chapter: expected %q, got %q", tt.chapter, got.Chapter)
			}
			if got.Title != tt.title {
				t.Errorf("title: expected %q, got %q", tt.title, got.Title)
			}
		})
	}
}

func TestIsHeadingCase(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"ВВЕДЕНИЕ", true},
		{"ПРИЛОЖЕНИЕ А", true},
		{"СОДЕРЖАНИЕ 2", true},
		{"ЧТО ДАЛЬШЕ?", false},
		{"ИТОГ!", false},
		{"ЧАСТЬ—ПЕРВАЯ", false},
		{"Введение", false},
		{"2024", false},
		{"   ", false},
	}
	for _, tt := range tests {
		if got := IsHeadingCase(tt.text); got != tt.want {
			t.Errorf("IsHeadingCase(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
