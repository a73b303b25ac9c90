package store

import (
	"context"
	"database/sql"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Publication is one row of the commitment history.
type Publication struct {
	ID          int64
	Commitment  *big.Int
	Publisher   string
	PublishedAt time.Time
}

// SQLStore persists every publication and verification receipt in sqlite.
// The current commitment is the most recent publication, or zero.
type SQLStore struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

// SQLOption configures a SQLStore.
type SQLOption func(*SQLStore)

// WithSQLLogger sets the logger used for migrations and writes.
func WithSQLLogger(l zerolog.Logger) SQLOption {
	return func(s *SQLStore) {
		s.logger = l
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) SQLOption {
	return func(s *SQLStore) {
		s.now = now
	}
}

// OpenSQLStore opens (or creates) the sqlite database at path and runs
// pending migrations. Use ":memory:" for a throwaway store.
func OpenSQLStore(path string, opts ...SQLOption) (*SQLStore, error) {
	s := &SQLStore{logger: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)
	s.db = db

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

var migrations = []func(tx *sql.Tx) error{
	func(tx *sql.Tx) error {
		_, err := tx.Exec(`create table commitments (
			id integer primary key autoincrement,
			value text not null,
			publisher text not null default '',
			published_at integer not null
		)`)
		return errors.Wrap(err, "error creating 'commitments' table")
	},
	func(tx *sql.Tx) error {
		_, err := tx.Exec(`create table verifications (
			id text primary key,
			public_commitment text not null,
			stored_commitment text not null,
			valid integer not null,
			reason text not null default '',
			verifier text not null,
			created_at integer not null
		)`)
		if err != nil {
			return errors.Wrap(err, "error creating 'verifications' table")
		}
		_, err = tx.Exec(`create index idx_verifications_created_at on verifications (created_at)`)
		return errors.Wrap(err, "error creating 'idx_verifications_created_at' index")
	},
}

func (s *SQLStore) version() (int, error) {
	version := -1
	err := s.db.QueryRow("select version from anondata_version order by version desc limit 1").Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return -1, errors.Wrap(err, "error checking database version")
	}
	return version, nil
}

func (s *SQLStore) migrate() error {
	if _, err := s.db.Exec("create table if not exists anondata_version (version int)"); err != nil {
		return errors.Wrap(err, "error creating version table")
	}
	version, err := s.version()
	if err != nil {
		return err
	}
	s.logger.Debug().Int("version", version).Msg("database version")

	for i, migrate := range migrations {
		if i <= version {
			continue
		}
		s.logger.Info().Int("migration", i).Msg("running migration")
		tx, err := s.db.Begin()
		if err != nil {
			return errors.WithStack(err)
		}
		if err := migrate(tx); err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.Exec("insert into anondata_version (version) values (?)", i); err != nil {
			tx.Rollback()
			return errors.WithStack(err)
		}
		if err := tx.Commit(); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// Publish appends a publication. The publisher is taken from the context,
// see ContextWithCaller.
func (s *SQLStore) Publish(ctx context.Context, commitment *big.Int) error {
	if err := checkCommitment(commitment); err != nil {
		return err
	}
	publisher, _ := CallerFromContext(ctx)
	_, err := s.db.ExecContext(ctx,
		"insert into commitments (value, publisher, published_at) values (?, ?, ?)",
		commitment.String(), publisher, s.now().UnixMilli())
	if err != nil {
		return errors.Wrap(err, "publish commitment")
	}
	s.logger.Debug().Str("commitment", commitment.String()).Str("publisher", publisher).Msg("commitment published")
	return nil
}

// Read returns the latest published commitment, zero if none.
func (s *SQLStore) Read(ctx context.Context) (*big.Int, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "select value from commitments order by id desc limit 1").Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read commitment")
	}
	return parseStored(value)
}

// History returns up to limit publications, newest first.
func (s *SQLStore) History(ctx context.Context, limit int) ([]Publication, error) {
	rows, err := s.db.QueryContext(ctx,
		"select id, value, publisher, published_at from commitments order by id desc limit ?", limit)
	if err != nil {
		return nil, errors.Wrap(err, "query history")
	}
	defer rows.Close()

	var out []Publication
	for rows.Next() {
		var (
			p     Publication
			value string
			ts    int64
		)
		if err := rows.Scan(&p.ID, &value, &p.Publisher, &ts); err != nil {
			return nil, errors.WithStack(err)
		}
		if p.Commitment, err = parseStored(value); err != nil {
			return nil, err
		}
		p.PublishedAt = time.UnixMilli(ts)
		out = append(out, p)
	}
	return out, errors.WithStack(rows.Err())
}

// RecordVerification implements Recorder. A zero ID or timestamp is filled in.
func (s *SQLStore) RecordVerification(ctx context.Context, v *Verification) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = s.now()
	}
	valid := 0
	if v.Valid {
		valid = 1
	}
	_, err := s.db.ExecContext(ctx,
		`insert into verifications
			(id, public_commitment, stored_commitment, valid, reason, verifier, created_at)
			values (?, ?, ?, ?, ?, ?, ?)`,
		v.ID.String(), intString(v.PublicCommitment), intString(v.StoredCommitment),
		valid, v.Reason, v.VerifierAddress.Hex(), v.CreatedAt.UnixMilli())
	return errors.Wrap(err, "record verification")
}

// Verifications returns up to limit receipts, newest first.
func (s *SQLStore) Verifications(ctx context.Context, limit int) ([]Verification, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, public_commitment, stored_commitment, valid, reason, verifier, created_at
			from verifications order by created_at desc, rowid desc limit ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query verifications")
	}
	defer rows.Close()

	var out []Verification
	for rows.Next() {
		var (
			v                    Verification
			id, pub, stored, adr string
			valid                int
			ts                   int64
		)
		if err := rows.Scan(&id, &pub, &stored, &valid, &v.Reason, &adr, &ts); err != nil {
			return nil, errors.WithStack(err)
		}
		if v.ID, err = uuid.Parse(id); err != nil {
			return nil, errors.WithStack(err)
		}
		if v.PublicCommitment, err = parseStored(pub); err != nil {
			return nil, err
		}
		if v.StoredCommitment, err = parseStored(stored); err != nil {
			return nil, err
		}
		v.Valid = valid == 1
		v.VerifierAddress = common.HexToAddress(adr)
		v.CreatedAt = time.UnixMilli(ts)
		out = append(out, v)
	}
	return out, errors.WithStack(rows.Err())
}

func parseStored(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Errorf("corrupt stored value %q", s)
	}
	return n, nil
}

func intString(x *big.Int) string {
	if x == nil {
		return "0"
	}
	return x.String()
}
