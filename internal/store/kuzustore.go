//go:build cgo

package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/dusk-indust/userdesk/internal/user"
)

// KuzuStore implements Store on an in-memory KuzuDB instance.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
//
// Each record is a UserRecord node keyed by a private sequence number, which
// gives the collection its order and lets two nodes share a user id.
type KuzuStore struct {
	mu    sync.Mutex
	db    *kuzu.Database
	conn  *kuzu.Connection
	seq   int64
	maxID int
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

const userDDL = `CREATE NODE TABLE IF NOT EXISTS UserRecord(
	seq INT64,
	id INT64,
	name STRING,
	username STRING,
	email STRING,
	phone STRING,
	website STRING,
	street STRING,
	city STRING,
	company STRING,
	PRIMARY KEY(seq)
)`

const userColumns = `u.id, u.name, u.username, u.email, u.phone, u.website, u.street, u.city, u.company`

// NewKuzuStore opens an in-memory KuzuDB and creates the user table.
func NewKuzuStore() (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(":memory:", cfg)
	if err != nil {
		return nil, fmt.Errorf("store: kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: kuzu: open connection: %w", err)
	}
	s := &KuzuStore{db: db, conn: conn}
	if err := s.exec(userDDL, nil); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func openKuzu() (Store, error) {
	s, err := NewKuzuStore()
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// Initialize deletes every node and inserts records in order.
func (s *KuzuStore) Initialize(_ context.Context, records []user.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.exec("MATCH (u:UserRecord) DELETE u", nil); err != nil {
		return err
	}
	for _, r := range records {
		if err := s.insert(r); err != nil {
			return err
		}
	}
	return nil
}

// Add appends r.
func (s *KuzuStore) Add(_ context.Context, r user.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insert(r)
}

// Replace overwrites the lowest-sequence node carrying r.ID.
func (s *KuzuStore) Replace(_ context.Context, r user.Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.query(
		"MATCH (u:UserRecord) WHERE u.id = $id RETURN u.seq ORDER BY u.seq LIMIT 1",
		map[string]any{"id": int64(r.ID)},
	)
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}
	params := recordParams(r)
	params["seq"] = toInt64(rows[0][0])
	err = s.exec(`MATCH (u:UserRecord {seq: $seq})
		SET u.name = $name, u.username = $username, u.email = $email,
			u.phone = $phone, u.website = $website, u.street = $street,
			u.city = $city, u.company = $company`, params)
	if err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes every node carrying id.
func (s *KuzuStore) Remove(_ context.Context, id int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	params := map[string]any{"id": int64(id)}
	rows, err := s.query("MATCH (u:UserRecord) WHERE u.id = $id RETURN count(u)", params)
	if err != nil {
		return 0, err
	}
	n := 0
	if len(rows) > 0 {
		n = int(toInt64(rows[0][0]))
	}
	if n == 0 {
		return 0, nil
	}
	if err := s.exec("MATCH (u:UserRecord) WHERE u.id = $id DELETE u", params); err != nil {
		return 0, err
	}
	return n, nil
}

// Filtered pushes the case-insensitive match into the Cypher predicate.
func (s *KuzuStore) Filtered(_ context.Context, term string) ([]user.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cypher := "MATCH (u:UserRecord) RETURN " + userColumns + " ORDER BY u.seq"
	var params map[string]any
	if term != "" {
		cypher = `MATCH (u:UserRecord)
			WHERE lower(u.name) CONTAINS $q
			   OR lower(u.username) CONTAINS $q
			   OR lower(u.email) CONTAINS $q
			   OR lower(u.city) CONTAINS $q
			RETURN ` + userColumns + " ORDER BY u.seq"
		params = map[string]any{"q": strings.ToLower(term)}
	}
	rows, err := s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]user.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToRecord(r))
	}
	return out, nil
}

// Get returns the lowest-sequence node carrying id.
func (s *KuzuStore) Get(_ context.Context, id int) (user.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.query(
		"MATCH (u:UserRecord) WHERE u.id = $id RETURN "+userColumns+" ORDER BY u.seq LIMIT 1",
		map[string]any{"id": int64(id)},
	)
	if err != nil {
		return user.Record{}, err
	}
	if len(rows) == 0 {
		return user.Record{}, ErrNotFound
	}
	return rowToRecord(rows[0]), nil
}

// NextID returns maxID+1.
func (s *KuzuStore) NextID(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.maxID + 1, nil
}

// Len counts UserRecord nodes.
func (s *KuzuStore) Len(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.query("MATCH (u:UserRecord) RETURN count(u)", nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return int(toInt64(rows[0][0])), nil
}

// insert must be called with mu held.
func (s *KuzuStore) insert(r user.Record) error {
	s.seq++
	params := recordParams(r)
	params["seq"] = s.seq
	params["id"] = int64(r.ID)
	err := s.exec(`CREATE (u:UserRecord {
		seq: $seq, id: $id, name: $name, username: $username, email: $email,
		phone: $phone, website: $website, street: $street, city: $city, company: $company
	})`, params)
	if err != nil {
		return err
	}
	if r.ID > s.maxID {
		s.maxID = r.ID
	}
	return nil
}

func recordParams(r user.Record) map[string]any {
	return map[string]any{
		"name":     r.Name,
		"username": r.Username,
		"email":    r.Email,
		"phone":    r.Phone,
		"website":  r.Website,
		"street":   r.Address.Street,
		"city":     r.Address.City,
		"company":  r.Company.Name,
	}
}

// rowToRecord converts a row selected with userColumns.
func rowToRecord(row []any) user.Record {
	return user.Record{
		ID:       int(toInt64(row[0])),
		Name:     toString(row[1]),
		Username: toString(row[2]),
		Email:    toString(row[3]),
		Phone:    toString(row[4]),
		Website:  toString(row[5]),
		Address:  user.Address{Street: toString(row[6]), City: toString(row[7])},
		Company:  user.Company{Name: toString(row[8])},
	}
}

// exec runs a Cypher statement that returns no rows of interest.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	if len(params) == 0 {
		res, err := s.conn.Query(cypher)
		if err != nil {
			return fmt.Errorf("store: kuzu: execute: %w", err)
		}
		res.Close()
		return nil
	}
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("store: kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("store: kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a Cypher statement and collects all rows in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("store: kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("store: kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("store: kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("store: kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case uint64:
		return int64(n)
	default:
		return 0
	}
}
