package pipeline

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/sells-group/events-cli/internal/model"
)

// ReadSource reads a source file holding a JSON array of raw records.
func ReadSource(path string) ([]model.RawEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read %s", path)
	}
	var records []model.RawEvent
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "pipeline: decode %s", path)
	}
	return records, nil
}

// WriteEvents writes events as an indented JSON array, replacing path
// atomically. Non-ASCII text is written as is.
func WriteEvents(path string, events []model.Event) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "pipeline: create output dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".normalized-*.json")
	if err != nil {
		return eris.Wrap(err, "pipeline: create temp output")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if events == nil {
		events = []model.Event{}
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(events); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrap(err, "pipeline: encode output")
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrap(err, "pipeline: chmod temp output")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "pipeline: close temp output")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrapf(err, "pipeline: replace %s", path)
	}
	return nil
}
