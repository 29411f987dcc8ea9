// Package sqlstore provides a record.Store on database/sql.
//
// Two drivers are supported: SQLite through the pure-Go modernc.org/sqlite
// driver and Postgres through the pgx stdlib adapter. Both use one table:
//
//	individuals(seq, owner, id, name, sex, dam_id, sire_id, attributes)
//
// seq preserves insertion order, which the lineage builder uses as discovery
// order. Payloads are stored as JSON text.
package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"github.com/matzehuels/pedigree/pkg/cache"
	pederrors "github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/record"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// Store keeps records in a SQL database.
type Store[P any] struct {
	db     *sql.DB
	driver string
}

// Open connects to dsn with driver ("sqlite", "pgx" or its alias "postgres"),
// pings it and ensures the schema exists. For SQLite the dsn is a file path
// whose parent directory is created.
func Open[P any](ctx context.Context, driverName, dsn string) (*Store[P], error) {
	switch driverName {
	case DriverSQLite:
		if dsn == "" {
			return nil, pederrors.New(pederrors.ErrCodeInvalidConfig, "sqlite store needs a database path")
		}
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create dirs: %w", err)
			}
		}
	case DriverPostgres, "postgres":
		driverName = DriverPostgres
		if dsn == "" {
			return nil, pederrors.New(pederrors.ErrCodeInvalidConfig, "postgres store needs a dsn")
		}
	default:
		return nil, pederrors.New(pederrors.ErrCodeInvalidConfig, "unsupported sql driver: %q", driverName)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, pederrors.Wrap(pederrors.ErrCodeStoreUnavailable, classify(err), "ping %s", driverName)
	}

	s := &Store[P]{db: db, driver: driverName}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database. The schema is not touched.
func New[P any](db *sql.DB, driverName string) *Store[P] {
	if driverName == "postgres" {
		driverName = DriverPostgres
	}
	return &Store[P]{db: db, driver: driverName}
}

// DB exposes the underlying sql.DB.
func (s *Store[P]) DB() *sql.DB { return s.db }

// EnsureSchema creates the individuals table if it does not exist.
func (s *Store[P]) EnsureSchema(ctx context.Context) error {
	seq := "seq INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == DriverPostgres {
		seq = "seq BIGSERIAL PRIMARY KEY"
	}
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS individuals (
		` + seq + `,
		owner TEXT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		sex TEXT NOT NULL DEFAULT '',
		dam_id TEXT NOT NULL DEFAULT '',
		sire_id TEXT NOT NULL DEFAULT '',
		attributes TEXT NOT NULL DEFAULT '',
		UNIQUE (owner, id)
	)`,
		`CREATE INDEX IF NOT EXISTS individuals_owner ON individuals (owner, seq)`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute ddl: %w", err)
		}
	}
	return nil
}

// Put inserts or replaces records for owner in one transaction. A replaced
// record keeps its original position in the list order.
func (s *Store[P]) Put(ctx context.Context, owner string, recs ...record.Record[P]) (retErr error) {
	if err := pederrors.ValidateOwner(owner); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`INSERT INTO individuals
		(owner, id, name, sex, dam_id, sire_id, attributes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner, id) DO UPDATE SET
			name = excluded.name,
			sex = excluded.sex,
			dam_id = excluded.dam_id,
			sire_id = excluded.sire_id,
			attributes = excluded.attributes`))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range recs {
		if err := pederrors.ValidateIndividualID(r.ID); err != nil {
			return err
		}
		payload, err := record.EncodePayload(r.Payload)
		if err != nil {
			return fmt.Errorf("encode attributes of %s: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, owner, r.ID, r.Name, string(r.Sex), r.DamID, r.SireID, string(payload)); err != nil {
			return fmt.Errorf("insert %s: %w", r.ID, classify(err))
		}
	}
	return tx.Commit()
}

// List returns the owner's records in insertion order.
func (s *Store[P]) List(ctx context.Context, owner string) ([]record.Record[P], error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT id, name, sex, dam_id, sire_id, attributes
		FROM individuals WHERE owner = ? ORDER BY seq`), owner)
	if err != nil {
		return nil, classify(err)
	}
	defer func() { _ = rows.Close() }()

	var recs []record.Record[P]
	for rows.Next() {
		var (
			r       record.Record[P]
			sex     string
			payload string
		)
		if err := rows.Scan(&r.ID, &r.Name, &sex, &r.DamID, &r.SireID, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		r.Sex = record.ParseSex(sex)
		if r.Payload, err = record.DecodePayload[P]([]byte(payload)); err != nil {
			return nil, fmt.Errorf("decode attributes of %s: %w", r.ID, err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return recs, nil
}

// Delete removes one record.
func (s *Store[P]) Delete(ctx context.Context, owner, id string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM individuals WHERE owner = ? AND id = ?`), owner, id)
	return classify(err)
}

// Close closes the database.
func (s *Store[P]) Close() error { return s.db.Close() }

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store[P]) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// classify marks connection failures retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrUnavailable, err))
	}
	return err
}

var _ record.Store[record.Attributes] = (*Store[record.Attributes])(nil)
