package room

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
)

// Store is durable read/write of the single snapshot document.
type Store interface {
	// Load returns the stored document. A missing or unreadable backing
	// store gives an empty document, never an error.
	Load() *Document

	// Save overwrites the stored document in full.
	Save(doc *Document) error
}

// NewStore opens the backend named in the config
func NewStore(cfg *Config, logger *log.Logger) (Store, error) {
	path, err := cfg.snapshotPath()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = defaultLogger()
	}

	switch cfg.Backend {
	case BackendSQLite:
		return OpenSQLStore(path, logger)
	case BackendJSON:
		return NewFileStore(path, logger), nil
	}
	return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Backend)
}

// FileStore keeps the document as one indented json file.
type FileStore struct {
	filename string
	log      *log.Logger
}

// NewFileStore returns a store backed by `fname`. Nothing is touched on
// disk until the first Save.
func NewFileStore(fname string, logger *log.Logger) *FileStore {
	if logger == nil {
		logger = defaultLogger()
	}
	return &FileStore{filename: fname, log: logger}
}

// Filename returns the path to the snapshot on disk
func (f *FileStore) Filename() string {
	return f.filename
}

// Load implements Store
func (f *FileStore) Load() *Document {
	data, err := ioutil.ReadFile(f.filename)
	if err != nil {
		if !os.IsNotExist(err) {
			f.log.Printf("warning: reading snapshot %s: %v", f.filename, err)
		}
		return NewDocument()
	}

	doc, err := Decode(bytes.NewReader(data))
	if err != nil {
		f.log.Printf("warning: snapshot %s is corrupt, starting empty: %v", f.filename, err)
		return NewDocument()
	}
	return doc
}

// Save implements Store
func (f *FileStore) Save(doc *Document) error {
	if dir := filepath.Dir(f.filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	buff := bytes.Buffer{}
	if err := doc.Encode(&buff); err != nil {
		return err
	}
	return ioutil.WriteFile(f.filename, buff.Bytes(), 0644)
}

// Encode the document as indented json
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// Decode a json document. Fields missing from older files are filled in
// so callers can use records without nil checks.
func Decode(r io.Reader) (*Document, error) {
	doc := NewDocument()
	if err := json.NewDecoder(r).Decode(doc); err != nil {
		return nil, err
	}
	doc.normalise()
	return doc, nil
}

// normalise fills defaults & drops records that can't be used
func (d *Document) normalise() {
	if d.Rooms == nil {
		d.Rooms = []string{}
	}
	kept := make([]*Record, 0, len(d.Records))
	for _, r := range d.Records {
		if r == nil || r.Identity == "" {
			continue
		}
		if r.State == nil {
			r.State = NewProperties()
		}
		if r.Scale == (Vec3{}) {
			r.Scale = One
		}
		kept = append(kept, r)
	}
	d.Records = kept
}

// MemoryStore keeps the document in memory, handy for tests & previews.
// Saved documents are deep copied so later edits don't leak in.
type MemoryStore struct {
	doc   *Document
	Saves int
}

// NewMemoryStore returns an empty in memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{doc: NewDocument()}
}

// Load implements Store
func (m *MemoryStore) Load() *Document {
	return m.doc.clone()
}

// Save implements Store
func (m *MemoryStore) Save(doc *Document) error {
	m.doc = doc.clone()
	m.Saves++
	return nil
}

func (d *Document) clone() *Document {
	out := &Document{
		Records: make([]*Record, 0, len(d.Records)),
		Rooms:   append([]string{}, d.Rooms...),
	}
	for _, r := range d.Records {
		out.Records = append(out.Records, r.Clone())
	}
	return out
}

func defaultLogger() *log.Logger {
	return log.New(os.Stderr, "[room] ", log.LstdFlags)
}
