package room

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const (
	sqlInsertRecord = `INSERT INTO records (seq, identity, px, py, pz, rotation, sx, sy, sz, template, data)
	VALUES (:seq, :identity, :px, :py, :pz, :rotation, :sx, :sy, :sz, :template, :data)`
	sqlInsertRoom = `INSERT INTO rooms (prefix) VALUES (:prefix) ON CONFLICT (prefix) DO NOTHING;`

	// rows per batched insert, keeps us well under sqlite's bound variable limit
	sqlBatchSize = 64
)

// SQLStore keeps the snapshot in a sqlite database. Records keep their
// document order via `seq`, custom state is a json blob per record.
type SQLStore struct {
	filename string
	db       *sqlx.DB
	log      *log.Logger
}

// OpenSQLStore given it's filename (database file) on disk.
// Will create if it doesn't exist.
func OpenSQLStore(fname string, logger *log.Logger) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(fname), 0755); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite3", fname)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = defaultLogger()
	}

	s := &SQLStore{db: db, filename: fname, log: logger}
	return s, s.init()
}

// Filename returns the path to the database on disk
func (s *SQLStore) Filename() string {
	return s.filename
}

// Close the underlying database
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Load implements Store
func (s *SQLStore) Load() *Document {
	doc, err := s.load()
	if err != nil {
		s.log.Printf("warning: reading snapshot db %s, starting empty: %v", s.filename, err)
		return NewDocument()
	}
	return doc
}

func (s *SQLStore) load() (*Document, error) {
	doc := NewDocument()

	rows := []dbRecord{}
	err := s.db.Select(&rows, "SELECT seq, identity, px, py, pz, rotation, sx, sy, sz, template, data FROM records ORDER BY seq;")
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		doc.Records = append(doc.Records, rec)
	}

	err = s.db.Select(&doc.Rooms, "SELECT prefix FROM rooms ORDER BY prefix;")
	if err != nil {
		return nil, err
	}

	doc.normalise()
	return doc, nil
}

// Save implements Store. The whole document is replaced in one
// transaction.
func (s *SQLStore) Save(doc *Document) error {
	txn, err := s.db.Beginx()
	if err != nil {
		return err
	}

	for _, q := range []string{"DELETE FROM records;", "DELETE FROM rooms;"} {
		if _, err := txn.Exec(q); err != nil {
			txn.Rollback()
			return err
		}
	}

	rows := make([]dbRecord, 0, len(doc.Records))
	for i, r := range doc.Records {
		rows = append(rows, newDBRecord(i, r))
	}
	for start := 0; start < len(rows); start += sqlBatchSize {
		end := start + sqlBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := txn.NamedExec(sqlInsertRecord, rows[start:end]); err != nil {
			txn.Rollback()
			return err
		}
	}

	for _, prefix := range doc.Rooms {
		if _, err := txn.NamedExec(sqlInsertRoom, map[string]interface{}{"prefix": prefix}); err != nil {
			txn.Rollback()
			return err
		}
	}

	return txn.Commit()
}

// init creates some DB tables for us if they don't exist
func (s *SQLStore) init() error {
	createRecords := `CREATE TABLE IF NOT EXISTS records(
		seq INTEGER PRIMARY KEY,
		identity TEXT NOT NULL,
		px REAL NOT NULL,
		py REAL NOT NULL,
		pz REAL NOT NULL,
		rotation REAL NOT NULL,
		sx REAL NOT NULL,
		sy REAL NOT NULL,
		sz REAL NOT NULL,
		template TEXT NOT NULL,
		data TEXT
	    );`
	_, err := s.db.Exec(createRecords)
	if err != nil {
		return err
	}

	createRooms := `CREATE TABLE IF NOT EXISTS rooms(
		prefix TEXT PRIMARY KEY
	    );`

	_, err = s.db.Exec(createRooms)
	return err
}

// dbRecord encodes a single record row.
type dbRecord struct {
	Seq      int     `db:"seq"`
	Identity string  `db:"identity"`
	PX       float64 `db:"px"`
	PY       float64 `db:"py"`
	PZ       float64 `db:"pz"`
	Rotation float64 `db:"rotation"`
	SX       float64 `db:"sx"`
	SY       float64 `db:"sy"`
	SZ       float64 `db:"sz"`
	Template string  `db:"template"`
	Data     string  `db:"data"`
}

// newDBRecord crafts a dbRecord given it's inputs.
// Custom state is encoded into JSON.
func newDBRecord(seq int, r *Record) dbRecord {
	state := r.State
	if state == nil {
		state = NewProperties()
	}
	databytes, _ := json.Marshal(state)

	return dbRecord{
		Seq:      seq,
		Identity: r.Identity,
		PX:       r.Position.X,
		PY:       r.Position.Y,
		PZ:       r.Position.Z,
		Rotation: r.Rotation,
		SX:       r.Scale.X,
		SY:       r.Scale.Y,
		SZ:       r.Scale.Z,
		Template: r.Template,
		Data:     string(databytes),
	}
}

func (d dbRecord) record() (*Record, error) {
	state := NewProperties()
	if d.Data != "" {
		if err := json.Unmarshal([]byte(d.Data), state); err != nil {
			return nil, err
		}
	}
	return &Record{
		Identity: d.Identity,
		Position: Vec3{X: d.PX, Y: d.PY, Z: d.PZ},
		Rotation: d.Rotation,
		Scale:    Vec3{X: d.SX, Y: d.SY, Z: d.SZ},
		Template: d.Template,
		State:    state,
	}, nil
}
