package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"health-chatbot/internal/config"
	"health-chatbot/pkg"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Store wraps database operations for patients, chat sessions and chat
// messages. Every method runs as its own implicit transaction; the service
// layer does not require multi-statement atomicity.
//
// Queries use strictly increasing $n placeholders, which both lib/pq and
// go-sqlite3 accept, so the same SQL serves either engine. Only statements
// that need the generated key differ per dialect.
type Store struct {
	DB     *sql.DB
	Engine config.Engine
}

// NewStore constructs a Store from an existing sql.DB. The caller is
// responsible for managing the DB connection lifecycle.
func NewStore(db *sql.DB, engine config.Engine) *Store {
	return &Store{DB: db, Engine: engine}
}

// Open opens a database connection for the configured engine and verifies it
// with a ping.
func Open(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	var driver, dsn string
	switch cfg.Engine {
	case config.EngineSQLite:
		driver = "sqlite3"
		dsn = cfg.SQLitePath + "?_journal_mode=WAL&_busy_timeout=5000"
	default:
		driver = "postgres"
		dsn = cfg.DatabaseURL
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Engine, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", cfg.Engine, err)
	}
	return db, nil
}

// CreatePatient inserts a patient record and returns its generated ID.
func (s *Store) CreatePatient(ctx context.Context, p *pkg.Patient) (int64, error) {
	const insert = `INSERT INTO patients
        (first_name, last_name, age, sex, address, contact_number, medical_history)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	// Postgres hands back the serial key via RETURNING; SQLite via the
	// statement's last-insert rowid.
	if s.Engine == config.EngineSQLite {
		res, err := s.DB.ExecContext(ctx, insert,
			p.FirstName, p.LastName, p.Age, p.Sex, p.Address, p.ContactNumber, p.MedicalHistory)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	var id int64
	err := s.DB.QueryRowContext(ctx, insert+` RETURNING patient_id`,
		p.FirstName, p.LastName, p.Age, p.Sex, p.Address, p.ContactNumber, p.MedicalHistory,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetPatient retrieves a patient by ID. A missing patient is reported as
// (nil, nil), not as an error.
func (s *Store) GetPatient(ctx context.Context, id int64) (*pkg.Patient, error) {
	var p pkg.Patient
	err := s.DB.QueryRowContext(ctx,
		`SELECT patient_id, first_name, last_name, age, sex, address, contact_number, medical_history, created_at
         FROM patients
         WHERE patient_id = $1`, id,
	).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Age, &p.Sex, &p.Address, &p.ContactNumber, &p.MedicalHistory, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateSession inserts a chat session row owned by the given patient. A
// concurrent duplicate insert for the same session ID degrades quietly.
func (s *Store) CreateSession(ctx context.Context, sessionID string, patientID int64) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO chat_sessions (session_id, patient_id)
         VALUES ($1, $2)
         ON CONFLICT (session_id) DO NOTHING`,
		sessionID, patientID)
	return err
}

// AppendMessage stores a new message for the given session.
func (s *Store) AppendMessage(ctx context.Context, sessionID string, role pkg.Role, content string) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO chat_messages (session_id, role, content)
         VALUES ($1, $2, $3)`,
		sessionID, role, content)
	return err
}

// Messages returns the most recent limit messages for a session, ordered by
// creation time ascending with the surrogate key as tiebreak. A limit of
// zero or less returns the full history.
func (s *Store) Messages(ctx context.Context, sessionID string, limit int) ([]pkg.Message, error) {
	query := `SELECT message_id, session_id, role, content, created_at
         FROM chat_messages
         WHERE session_id = $1
         ORDER BY created_at ASC, message_id ASC`
	args := []any{sessionID}
	if limit > 0 {
		query = `SELECT message_id, session_id, role, content, created_at
             FROM (SELECT message_id, session_id, role, content, created_at
                   FROM chat_messages
                   WHERE session_id = $1
                   ORDER BY created_at DESC, message_id DESC
                   LIMIT $2) recent
             ORDER BY created_at ASC, message_id ASC`
		args = append(args, limit)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []pkg.Message
	for rows.Next() {
		var m pkg.Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// FirstMessage returns the earliest message of a session, or (nil, nil) when
// the session has no messages. For any established session this is its
// system message.
func (s *Store) FirstMessage(ctx context.Context, sessionID string) (*pkg.Message, error) {
	var m pkg.Message
	err := s.DB.QueryRowContext(ctx,
		`SELECT message_id, session_id, role, content, created_at
         FROM chat_messages
         WHERE session_id = $1
         ORDER BY created_at ASC, message_id ASC
         LIMIT 1`, sessionID,
	).Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CountMessages counts the persisted messages of a session. A count of zero
// marks the session as novel.
func (s *Store) CountMessages(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chat_messages WHERE session_id = $1`,
		sessionID,
	).Scan(&count)
	return count, err
}

// DeleteSession removes a session and all of its messages. Deleting a
// session that does not exist is not an error.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := s.DB.ExecContext(ctx,
		`DELETE FROM chat_messages WHERE session_id = $1`, sessionID); err != nil {
		return err
	}
	_, err := s.DB.ExecContext(ctx,
		`DELETE FROM chat_sessions WHERE session_id = $1`, sessionID)
	return err
}

// PatientSessions lists the chat sessions owned by a patient, most recent
// first.
func (s *Store) PatientSessions(ctx context.Context, patientID int64) ([]pkg.Session, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT session_id, patient_id, created_at
         FROM chat_sessions
         WHERE patient_id = $1
         ORDER BY created_at DESC, session_id ASC`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []pkg.Session
	for rows.Next() {
		var sess pkg.Session
		if err := rows.Scan(&sess.ID, &sess.PatientID, &sess.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}
