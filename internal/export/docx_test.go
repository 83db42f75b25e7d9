package export

import (
	"archive/zip"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func TestDocx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiz.docx")
	body := "## Key ideas\n\n- **Gradient** descent\n\nQ: What minimizes loss?\na) x\nb) y\nAnswer: b\n"

	if err := Docx("Lecture quiz", body, path); err != nil {
		t.Fatalf("Docx() error = %v", err)
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open docx: %v", err)
	}
	defer r.Close()

	var document string
	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		document = string(data)
	}

	for _, want := range []string{"Lecture quiz", "Key ideas", "Gradient", "What minimizes loss?", "Answer: "} {
		if !strings.Contains(document, want) {
			t.Errorf("document.xml missing %q", want)
		}
	}
	if strings.Contains(document, "**") {
		t.Error("document.xml should not contain markdown markers")
	}
}

func TestCleanMarkdownInline(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"**bold**", "bold"},
		{"__u__ and `code`", "u and code"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := cleanMarkdownInline(tt.in); got != tt.want {
			t.Errorf("cleanMarkdownInline(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHeadingSize(t *testing.T) {
	if headingSize(1) != 16 || headingSize(3) != 14 || headingSize(6) != fontSize {
		t.Error("headingSize() returned unexpected sizes")
	}
}
