package treemaker

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"io"

	"github.com/carbocation/pfx"
	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type Compression byte

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZip
	CompressionXZ
	CompressionZlib
	CompressionBZip2
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZip:
		return "zip"
	case CompressionXZ:
		return "xz"
	case CompressionZlib:
		return "zlib"
	case CompressionBZip2:
		return "bzip2"
	}
	return "none"
}

// Byte code signatures from https://stackoverflow.com/a/19127748/199475
var signatures = []struct {
	kind Compression
	sig  []byte
}{
	{CompressionGzip, []byte{0x1f, 0x8b, 0x08}},
	{CompressionZip, []byte{0x50, 0x4b, 0x03, 0x04}},
	{CompressionXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{CompressionBZip2, []byte{0x42, 0x5a, 0x68}},
	{CompressionZlib, []byte{0x78, 0x01}},
	{CompressionZlib, []byte{0x78, 0x9c}},
	{CompressionZlib, []byte{0x78, 0xda}},
}

// DetectCompression inspects the first bytes of a stream.
func DetectCompression(head []byte) Compression {
	for _, v := range signatures {
		if bytes.HasPrefix(head, v.sig) {
			return v.kind
		}
	}

	return CompressionNone
}

// Decompress peeks at r and, if it starts with a known signature, wraps it in
// the matching decoder. Zip archives yield their first entry. Uncompressed
// input is passed through.
func Decompress(r io.Reader) (io.ReadCloser, Compression, error) {
	br := bufio.NewReader(r)

	// A short stream can't carry a signature; Peek reports EOF for it and
	// that is fine.
	head, err := br.Peek(6)
	if err != nil && err != io.EOF {
		return nil, CompressionNone, pfx.Err(err)
	}

	kind := DetectCompression(head)

	switch kind {
	case CompressionGzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, kind, pfx.Err(err)
		}
		return gz, kind, nil
	case CompressionZip:
		zr := zipstream.NewReader(br)
		if _, err := zr.Next(); err != nil {
			return nil, kind, pfx.Err(err)
		}
		return io.NopCloser(zr), kind, nil
	case CompressionBZip2:
		return io.NopCloser(bzip2.NewReader(br)), kind, nil
	case CompressionXZ:
		xr, err := xz.NewReader(br, 0)
		if err != nil {
			return nil, kind, pfx.Err(err)
		}
		return io.NopCloser(xr), kind, nil
	case CompressionZlib:
		zl, err := zlib.NewReader(br)
		if err != nil {
			return nil, kind, pfx.Err(err)
		}
		return zl, kind, nil
	}

	return io.NopCloser(br), kind, nil
}
