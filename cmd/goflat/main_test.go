package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const rowsDoc = `
schema:
  list:
    elem:
      name: Row
      fields:
        - {name: id, type: int, length: 3}
        - {name: name, type: string, length: 5}
`

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rows.yaml")
	if err := os.WriteFile(path, []byte(rowsDoc), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestDecodeEncode(t *testing.T) {
	schema := writeSchema(t)
	code, out, stderr := runCLI(t, "001Alice\n002Bob  \n", "decode", "-schema", schema)
	if code != 0 {
		t.Fatalf("decode exit %d: %s", code, stderr)
	}
	want := "{\"id\":1,\"name\":\"Alice\"}\n{\"id\":2,\"name\":\"Bob\"}\n"
	if out != want {
		t.Fatalf("want %q, got %q", want, out)
	}

	code, text, stderr := runCLI(t, out, "encode", "-schema", schema)
	if code != 0 {
		t.Fatalf("encode exit %d: %s", code, stderr)
	}
	if text != "001Alice\n002Bob  " {
		t.Fatalf("want the original rows, got %q", text)
	}
}

func TestDecode_CSV(t *testing.T) {
	schema := writeSchema(t)
	code, out, stderr := runCLI(t, "id,name\n7,Eve\n", "decode", "-schema", schema, "-format", "csv")
	if code != 0 {
		t.Fatalf("decode exit %d: %s", code, stderr)
	}
	if out != "{\"id\":7,\"name\":\"Eve\"}\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestDecode_KeepGoing(t *testing.T) {
	schema := writeSchema(t)
	code, out, stderr := runCLI(t, "001Alice\nxx1Bob  \n003Carol\n", "decode", "-schema", schema, "-keep-going")
	if code != 1 {
		t.Fatalf("want exit 1, got %d", code)
	}
	if strings.Count(out, "\n") != 2 {
		t.Fatalf("want two good records, got %q", out)
	}
	if !strings.Contains(stderr, "1 of 3 records rejected") {
		t.Fatalf("want a rejection summary, got %q", stderr)
	}

	code, _, _ = runCLI(t, "001Alice\nxx1Bob  \n", "decode", "-schema", schema)
	if code != 1 {
		t.Fatalf("want exit 1 without -keep-going, got %d", code)
	}
}

func TestMinlenAndValidate(t *testing.T) {
	schema := writeSchema(t)
	code, out, _ := runCLI(t, "", "minlen", "-schema", schema)
	if code != 0 || out != "8\n" {
		t.Fatalf("want 8, got exit %d %q", code, out)
	}
	code, out, _ = runCLI(t, "", "validate", "-schema", schema, "-format", "csv")
	if code != 0 || !strings.Contains(out, "ok for csv") {
		t.Fatalf("want ok, got exit %d %q", code, out)
	}
	code, _, stderr := runCLI(t, "", "validate", "-schema", schema, "-format", "xml")
	if code != 1 || !strings.Contains(stderr, "unknown format") {
		t.Fatalf("want unknown format error, got exit %d %q", code, stderr)
	}
}

func TestUsage(t *testing.T) {
	if code, _, _ := runCLI(t, ""); code != 2 {
		t.Fatalf("want exit 2 without a subcommand, got %d", code)
	}
	if code, _, _ := runCLI(t, "", "decode"); code != 2 {
		t.Fatalf("want exit 2 without -schema, got %d", code)
	}
}
