package exporter

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"PriceArchive/internal/model"
)

// DateLayout is the record key format (UTC calendar date).
const DateLayout = "20060102"

// Serialize maps each candle to a {date: close} record, keeping order.
// A zero-candle series yields an empty, non-nil document.
func Serialize(series *model.Series) (model.Document, error) {
	doc := make(model.Document, 0, series.Len())
	if series == nil {
		return doc, nil
	}
	for i, c := range series.Candles {
		if math.IsNaN(c.Close) || math.IsInf(c.Close, 0) {
			return nil, &SerializationError{Index: i, Timestamp: c.Timestamp, Reason: "close is not finite"}
		}
		t := c.Time()
		if t.Year() < 0 || t.Year() > 9999 {
			return nil, &SerializationError{Index: i, Timestamp: c.Timestamp, Reason: "date outside YYYYMMDD range"}
		}
		doc = append(doc, model.Record{Date: t.Format(DateLayout), Close: c.Close})
	}
	return doc, nil
}

// jsonRecord encodes a Record as a single-key object.
type jsonRecord model.Record

func (r jsonRecord) MarshalJSON() ([]byte, error) {
	if math.IsNaN(r.Close) || math.IsInf(r.Close, 0) {
		return nil, &SerializationError{Index: -1, Reason: "close is not finite"}
	}
	key, err := json.Marshal(r.Date)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, len(key)+24)
	buf = append(buf, '{')
	buf = append(buf, key...)
	buf = append(buf, ':')
	buf = append(buf, formatClose(r.Close)...)
	buf = append(buf, '}')
	return buf, nil
}

// formatClose renders the shortest round-trip form of v. Integral values
// keep a ".0" suffix and very small or very large magnitudes switch to
// exponent notation, so 29350 is written as 29350.0.
func formatClose(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Marshal encodes doc as a JSON array indented by two spaces, with no
// trailing newline.
func Marshal(doc model.Document) ([]byte, error) {
	out := make([]jsonRecord, len(doc))
	for i, r := range doc {
		out[i] = jsonRecord(r)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		var se *SerializationError
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, &SerializationError{Index: -1, Reason: err.Error()}
	}
	return data, nil
}

// Write replaces the file at path with the encoded document. The data goes
// to a temporary file in the same directory which is renamed over path
// only after a successful sync, so a failed write leaves no partial file.
func Write(doc model.Document, path string) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
		}
		if tmpName != "" {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return &IOError{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &IOError{Op: "sync", Path: tmpName, Err: err}
	}
	if err := tmp.Chmod(0644); err != nil {
		return &IOError{Op: "chmod", Path: tmpName, Err: err}
	}
	err = tmp.Close()
	tmp = nil
	if err != nil {
		return &IOError{Op: "close", Path: tmpName, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	tmpName = ""

	log.Info().Str("path", path).Int("records", len(doc)).Int("bytes", len(data)).Msg("document written")
	return nil
}

// Export serializes series and writes it to path.
func Export(series *model.Series, path string) (model.Document, error) {
	doc, err := Serialize(series)
	if err != nil {
		return nil, err
	}
	if err := Write(doc, path); err != nil {
		return nil, err
	}
	return doc, nil
}
