package export

import (
	"context"
	"encoding/json"
	"io"

	"github.com/lcalzada-xor/nearby/internal/core/domain"
)

// JSONExporter writes the NetworkCollection document, or the people list in
// people mode.
type JSONExporter struct{}

func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Encode writes snap to w as indented JSON.
func (e *JSONExporter) Encode(w io.Writer, snap domain.Snapshot) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if snap.PeopleMode {
		people := snap.People
		if people == nil {
			people = []domain.Person{}
		}
		return encoder.Encode(people)
	}
	return encoder.Encode(domain.NewNetworkCollection(snap.Collections))
}

// Export writes snap to path, or to Stdout when path is empty.
func (e *JSONExporter) Export(_ context.Context, snap domain.Snapshot, path string) error {
	w, err := create(path)
	if err != nil {
		return err
	}
	if err := e.Encode(w, snap); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
