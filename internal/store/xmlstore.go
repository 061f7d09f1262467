package store

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"roster/internal/models"
)

var _ Backend = (*XMLStore)(nil)

// XMLStore keeps players in one XML document. Every mutation rewrites the
// whole file; there is no locking against other writers.
type XMLStore struct {
	path string
}

// NewXML returns a store bound to path. The file is created lazily.
func NewXML(path string) *XMLStore { return &XMLStore{path: path} }

func (s *XMLStore) Path() string { return s.path }

// SetPath repoints the store and creates an empty document when missing.
func (s *XMLStore) SetPath(path string) error {
	s.path = path
	return s.EnsureExists()
}

// EnsureExists writes an empty document when the file does not exist.
func (s *XMLStore) EnsureExists() error {
	if s.path == "" {
		return fmt.Errorf("%w: xml path required", ErrStorage)
	}
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return s.write(&xmlDocument{})
}

func (s *XMLStore) Close() error { return nil }

type xmlDocument struct {
	XMLName xml.Name    `xml:"players"`
	Players []xmlRecord `xml:"player"`
}

// xmlRecord is one <player> block. Unknown child elements are carried in
// Extra so rewrites do not drop them.
type xmlRecord struct {
	FullName     string     `xml:"full_name"`
	BirthDate    string     `xml:"birth_date"`
	FootballTeam string     `xml:"football_team"`
	HomeCity     string     `xml:"home_city"`
	TeamType     string     `xml:"team_type"`
	Position     string     `xml:"position"`
	Extra        []xmlExtra `xml:",any"`
}

type xmlExtra struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

func recordOf(p models.Player) xmlRecord {
	return xmlRecord{
		FullName:     p.FullName,
		BirthDate:    p.BirthDate.String(),
		FootballTeam: p.FootballTeam,
		HomeCity:     p.HomeCity,
		TeamType:     p.TeamType.Label(),
		Position:     p.Position.Label(),
	}
}

func (r xmlRecord) player() (models.Player, error) {
	birth, err := models.ParseDate(r.BirthDate)
	if err != nil {
		return models.Player{}, err
	}
	tt, ok := models.TeamTypeFromLabel(r.TeamType)
	if !ok {
		return models.Player{}, fmt.Errorf("unknown team type label %q", r.TeamType)
	}
	pos, ok := models.PositionFromLabel(r.Position)
	if !ok {
		return models.Player{}, fmt.Errorf("unknown position label %q", r.Position)
	}
	return models.Player{
		FullName:     r.FullName,
		BirthDate:    birth,
		FootballTeam: r.FootballTeam,
		HomeCity:     r.HomeCity,
		TeamType:     tt,
		Position:     pos,
	}, nil
}

func (s *XMLStore) read() (*xmlDocument, error) {
	if err := s.EnsureExists(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	var doc xmlDocument
	if err := xml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrStorage, s.path, err)
	}
	return &doc, nil
}

// write replaces the file via a temp file in the same directory.
func (s *XMLStore) write(doc *xmlDocument) error {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("%w: encode: %w", ErrStorage, err)
	}
	buf.WriteByte('\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".players-*.xml")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

func (s *XMLStore) Add(_ context.Context, p *models.Player) error {
	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Players = append(doc.Players, recordOf(*p))
	return s.write(doc)
}

// List decodes every record in document order.
func (s *XMLStore) List(_ context.Context) ([]models.Player, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make([]models.Player, 0, len(doc.Players))
	for i, r := range doc.Players {
		p, err := r.player()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrStorage, i+1, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *XMLStore) Search(ctx context.Context, f Filter) ([]models.Player, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Player, 0, len(all))
	for _, p := range all {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Delete rewrites the document without the matching records. An empty
// filter deletes nothing.
func (s *XMLStore) Delete(_ context.Context, f Filter) (int, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	doc, err := s.read()
	if err != nil {
		return 0, err
	}
	if f.IsEmpty() {
		return 0, nil
	}
	kept := doc.Players[:0]
	removed := 0
	for i, r := range doc.Players {
		p, err := r.player()
		if err != nil {
			return 0, fmt.Errorf("%w: record %d: %w", ErrStorage, i+1, err)
		}
		if f.Matches(p) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	if removed == 0 {
		return 0, nil
	}
	doc.Players = kept
	if err := s.write(doc); err != nil {
		return 0, err
	}
	return removed, nil
}
