package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	svc, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if svc.Format() != FormatText {
		t.Errorf("default format = %v, want text", svc.Format())
	}
	if !svc.Colored() {
		t.Error("default output should be colored")
	}
}

func TestNewWithFormat(t *testing.T) {
	svc, err := New(WithFormat(FormatJSON))
	if err != nil {
		t.Fatal(err)
	}
	if svc.Format() != FormatJSON {
		t.Errorf("format = %v, want json", svc.Format())
	}
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	svc, err := New(WithWriter(&buf))
	if err != nil {
		t.Fatal(err)
	}
	if svc.Writer() != &buf {
		t.Error("expected writer to be set")
	}
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	svc, err := New(WithFile(path))
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	if svc.Colored() {
		t.Error("file output should disable color")
	}
}

func TestNewWithFileInvalid(t *testing.T) {
	if _, err := New(WithFile(filepath.Join(t.TempDir(), "missing", "out.txt"))); err == nil {
		t.Error("expected error for unwritable path")
	}
}

func TestClose(t *testing.T) {
	svc, err := New(WithFile(filepath.Join(t.TempDir(), "out.txt")))
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	// Close without an open file is a no-op.
	plain, _ := New()
	if err := plain.Close(); err != nil {
		t.Errorf("Close() without file error = %v", err)
	}
}

func TestFormatDataJSON(t *testing.T) {
	svc, _ := New(WithFormat(FormatJSON))
	got, err := svc.FormatData(map[string]int{"count": 42})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "\"count\": 42") {
		t.Errorf("FormatData = %q", got)
	}
}

func TestFormatDataMarkdown(t *testing.T) {
	svc, _ := New(WithFormat(FormatMarkdown))
	got, err := svc.FormatData(map[string]int{"count": 42})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "```json\n") || !strings.HasSuffix(got, "```\n") {
		t.Errorf("expected fenced json block, got %q", got)
	}
}

func TestFormatDataTOON(t *testing.T) {
	svc, _ := New(WithFormat(FormatTOON))
	got, err := svc.FormatData(map[string]int{"count": 42})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "count") {
		t.Errorf("FormatData = %q", got)
	}
}

func TestFormatDataUnmarshalable(t *testing.T) {
	svc, _ := New(WithFormat(FormatJSON))
	if _, err := svc.FormatData(make(chan int)); err == nil {
		t.Error("expected error for unmarshalable data")
	}
}

func TestOutput(t *testing.T) {
	var buf bytes.Buffer
	svc, _ := New(WithWriter(&buf), WithFormat(FormatJSON))

	if err := svc.Output(map[string]string{"message": "hello"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestOutputToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	svc, err := New(WithFile(path), WithFormat(FormatJSON))
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Output(map[string]string{"message": "hello"}); err != nil {
		t.Fatal(err)
	}
	svc.Close()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "hello") {
		t.Errorf("file content = %q", content)
	}
}

func TestOutputTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.md")

	svc, err := New(WithFile(path), WithFormat(FormatMarkdown))
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	table := NewTable(
		"Dead Code",
		[]string{"Location", "Kind"},
		[][]string{{"a.ts:3", "deadFunction"}, {"b.ts:1", "deadFile"}},
		[]string{"2 issues"},
		nil,
	)
	if err := svc.OutputTable(table); err != nil {
		t.Fatal(err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Dead Code", "deadFunction", "b.ts:1"} {
		if !strings.Contains(string(content), want) {
			t.Errorf("table output missing %q:\n%s", want, content)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"json", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{"", FormatText},
		{"xml", FormatText},
	}
	for _, tt := range tests {
		if got := ParseFormat(tt.input); got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
