package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zeebo/xxh3"

	"referralreport/internal/table"
)

// Encode renders t as CSV with a header row and no index column. Cells are
// rendered with table.Format, so the output is a pure function of the data.
func Encode(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			rec[i] = table.Format(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Fingerprint is the xxh3-64 hash of an encoded report, rendered as hex.
func Fingerprint(b []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(b))
}

// WriteCSV encodes t and replaces path atomically: the bytes go to a
// temporary file in the same directory which is renamed over path only after
// it is synced. On failure path is left untouched. It returns the fingerprint
// and the number of bytes written.
func WriteCSV(path string, t *table.Table) (fingerprint string, n int, err error) {
	var buf bytes.Buffer
	if err := Encode(&buf, t); err != nil {
		return "", 0, fmt.Errorf("encode report: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(buf.Bytes()); err != nil {
		return "", 0, fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		return "", 0, fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return "", 0, fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", 0, fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return "", 0, fmt.Errorf("rename to %s: %w", path, err)
	}
	return Fingerprint(buf.Bytes()), buf.Len(), nil
}
