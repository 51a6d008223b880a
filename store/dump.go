package store

import (
	"bufio"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/teranos/twitgraph/errors"
)

// Dump writes every assertion in s to w as N-Quads and returns how many it
// wrote.
func Dump(ctx context.Context, s Store, w io.Writer) (int64, error) {
	c, err := s.Read(ctx, Pattern{})
	if err != nil {
		return 0, err
	}
	defer c.Close()

	bw := bufio.NewWriter(w)
	var n int64
	for c.Next() {
		if _, err := bw.WriteString(c.Assertion().String() + "\n"); err != nil {
			return n, errors.Wrap(err, "write n-quad")
		}
		n++
	}
	if err := c.Err(); err != nil {
		return n, err
	}
	if err := bw.Flush(); err != nil {
		return n, errors.Wrap(err, "flush dump")
	}
	return n, nil
}

// DumpFile dumps s to path, gzip-compressed when path ends in ".gz". The
// file is replaced atomically, so readers never see a partial dump.
func DumpFile(ctx context.Context, s Store, path string) (n int64, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, errors.Wrapf(err, "create dump file for %s", path)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	var w io.Writer = tmp
	var zw *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		zw = gzip.NewWriter(tmp)
		w = zw
	}

	if n, err = Dump(ctx, s, w); err != nil {
		return n, errors.WithDetailf(err, "Dump file: %s", path)
	}
	if zw != nil {
		if err = zw.Close(); err != nil {
			return n, errors.Wrap(err, "finish gzip stream")
		}
	}
	if err = tmp.Close(); err != nil {
		return n, errors.Wrap(err, "close dump file")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return n, errors.Wrapf(err, "replace %s", path)
	}
	return n, nil
}
