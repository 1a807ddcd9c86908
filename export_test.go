package tov

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestRawRoundTrip(t *testing.T) {
	tbl := syntheticTable(15, 11)
	var buf bytes.Buffer
	if err := WriteRaw(&buf, tbl); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 15 {
		t.Fatalf("%d lines for 15 rows", len(lines))
	}
	if fields := strings.Fields(lines[3]); len(fields) != 7 || fields[0] != "3.00000000000000e-01" {
		t.Fatalf("unexpected line %q", lines[3])
	}
	back, err := ReadRaw(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if back.Len() != tbl.Len() {
		t.Fatalf("read %d rows, wrote %d", back.Len(), tbl.Len())
	}
	src, dst := tbl.columns(), back.columns()
	for i := range src {
		if !floats.EqualApprox(*src[i], *dst[i], 1e-14) {
			t.Fatalf("column %d differs:\n%v\n%v", i, *src[i], *dst[i])
		}
	}
}

func TestReadRawErrors(t *testing.T) {
	for _, bad := range []string{
		"1 2 3 4 5 6\n",
		"1 2 3 4 5 6 x\n",
	} {
		if _, err := ReadRaw(strings.NewReader(bad)); err == nil {
			t.Fatalf("%q should not parse", bad)
		}
	}
	tbl, err := ReadRaw(strings.NewReader("# header\n\n 0 1 1 1 0 0 0\n"))
	if err != nil || tbl.Len() != 1 {
		t.Fatalf("len=%d err=%v", tbl.Len(), err)
	}
}

func TestWriteAdjusted(t *testing.T) {
	p, err := Normalize(syntheticTable(12, 8), 3)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteAdjusted(&buf, p); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != p.Len() {
		t.Fatalf("%d lines for %d rows", len(lines), p.Len())
	}
	for i, l := range lines {
		if n := len(strings.Fields(l)); n != 8 {
			t.Fatalf("line %d has %d columns", i, n)
		}
	}
}

func TestRawFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tov.raw")
	tbl := syntheticTable(5, 3)
	if err := WriteRawFile(path, tbl); err != nil {
		t.Fatal(err)
	}
	back, err := ReadRawFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualApprox(back.Mass, tbl.Mass, 1e-14) {
		t.Fatalf("masses differ: %v %v", back.Mass, tbl.Mass)
	}
	p, err := Normalize(back, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteAdjustedFile(filepath.Join(t.TempDir(), "tov.adj"), p); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadRawFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("reading a missing file should fail")
	}
}
