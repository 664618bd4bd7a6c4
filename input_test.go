package treemaker

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const table = "Name\tA-1\tA-2\n" +
	"s1\t140\t143\n" +
	"s2\t143\t146\n" +
	"s3\t140\t146\n"

func TestDecompress(t *testing.T) {
	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	gw.Write([]byte(table))
	gw.Close()

	var zl bytes.Buffer
	zw := zlib.NewWriter(&zl)
	zw.Write([]byte(table))
	zw.Close()

	var zp bytes.Buffer
	archive := zip.NewWriter(&zp)
	entry, err := archive.Create("alleles.tsv")
	if err != nil {
		t.Fatal(err)
	}
	entry.Write([]byte(table))
	archive.Close()

	for _, v := range []struct {
		input []byte
		want  Compression
	}{
		{[]byte(table), CompressionNone},
		{gz.Bytes(), CompressionGzip},
		{zl.Bytes(), CompressionZlib},
		{zp.Bytes(), CompressionZip},
	} {
		rc, kind, err := Decompress(bytes.NewReader(v.input))
		if err != nil {
			t.Fatalf("%s: %v", v.want, err)
		}
		if kind != v.want {
			t.Errorf("detected %s, want %s", kind, v.want)
		}

		got, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("%s: %v", v.want, err)
		}
		rc.Close()

		if string(got) != table {
			t.Errorf("%s: got %q", v.want, got)
		}
	}
}

func TestDecompressShortInput(t *testing.T) {
	rc, kind, err := Decompress(bytes.NewReader([]byte("ab")))
	if err != nil {
		t.Fatal(err)
	}
	if kind != CompressionNone {
		t.Fatalf("got %s", kind)
	}
	if got, _ := io.ReadAll(rc); string(got) != "ab" {
		t.Fatalf("got %q", got)
	}
}

func TestDetectCompression(t *testing.T) {
	if got := DetectCompression([]byte{0x42, 0x5a, 0x68, 0x39}); got != CompressionBZip2 {
		t.Errorf("bzip2: got %s", got)
	}
	if got := DetectCompression([]byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}); got != CompressionXZ {
		t.Errorf("xz: got %s", got)
	}
	if got := DetectCompression(nil); got != CompressionNone {
		t.Errorf("empty: got %s", got)
	}
}

func TestReadAllLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alleles.tsv.gz")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(f)
	gw.Write([]byte(table))
	gw.Close()
	f.Close()

	got, err := ReadAll(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != table {
		t.Fatalf("got %q", got)
	}

	if _, err := ReadAll(context.Background(), filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if _, err := ReadAll(context.Background(), "gs://bucket/alleles.tsv", nil); err == nil {
		t.Fatal("expected an error without a storage client")
	}
}

func TestSplitGoogleStoragePath(t *testing.T) {
	bucket, object, err := SplitGoogleStoragePath("gs://my-bucket/runs/2024/alleles.tsv")
	if err != nil {
		t.Fatal(err)
	}
	if bucket != "my-bucket" || object != "runs/2024/alleles.tsv" {
		t.Fatalf("got %q %q", bucket, object)
	}

	for _, bad := range []string{"gs://", "gs://bucket", "gs://bucket/"} {
		if _, _, err := SplitGoogleStoragePath(bad); err == nil {
			t.Errorf("expected an error for %q", bad)
		}
	}
}

func TestExpandHome(t *testing.T) {
	if got, err := ExpandHome("/tmp/x"); err != nil || got != "/tmp/x" {
		t.Fatalf("got %q, %v", got, err)
	}

	got, err := ExpandHome("~/alleles.tsv")
	if err != nil {
		t.Skip("no current user:", err)
	}
	if got == "~/alleles.tsv" || filepath.Base(got) != "alleles.tsv" {
		t.Fatalf("got %q", got)
	}
}

func TestParseDelimiter(t *testing.T) {
	sample := []byte("Name,A-1,A-2\ns1,140,143\ns2,143,146\ns3,140,146\n")

	if got, err := ParseDelimiter("auto", sample); err != nil || got != ',' {
		t.Errorf("auto on commas: got %q, %v", got, err)
	}
	if got, err := ParseDelimiter("auto", []byte(table)); err != nil || got != '\t' {
		t.Errorf("auto on tabs: got %q, %v", got, err)
	}
	if got, err := ParseDelimiter("tab", sample); err != nil || got != '\t' {
		t.Errorf("tab: got %q, %v", got, err)
	}
	if _, err := ParseDelimiter("pipe", sample); err == nil {
		t.Error("expected an error")
	}
}

func TestReadAllHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/alleles.tsv" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, table)
	}))
	defer srv.Close()

	got, err := ReadAll(context.Background(), srv.URL+"/alleles.tsv", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != table {
		t.Fatalf("got %q", got)
	}

	if _, err := ReadAll(context.Background(), srv.URL+"/missing.tsv", nil); err == nil {
		t.Fatal("expected an error for a 404")
	}
}
