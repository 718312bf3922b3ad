package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/scrypster/banyan/internal/storage"
	"github.com/scrypster/banyan/pkg/types"
)

// Store implements storage.Store using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database, configures WAL mode, and creates the
// schema.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Using a single open
	// connection serialises writes and avoids SQLITE_BUSY errors under
	// concurrent load. WAL mode lets readers proceed without blocking
	// the writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Wait instead of failing with SQLITE_BUSY when the connection is
	// held by another goroutine.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// GetDB exposes the underlying connection for callers that need direct
// access (migrations, tests).
func (s *Store) GetDB() *sql.DB {
	return s.db
}

// RunMigrations applies all pending migrations from the given directory.
// This is the recommended way to upgrade the schema of an existing
// database instead of the embedded Schema constant.
func (s *Store) RunMigrations(migrationsDir string) error {
	mgr, err := storage.NewMigrationManager(s.db, migrationsDir, "sqlite")
	if err != nil {
		return fmt.Errorf("sqlite: failed to create migration manager: %w", err)
	}

	if err := mgr.Up(); err != nil {
		return fmt.Errorf("sqlite: failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Persons
// ---------------------------------------------------------------------------

const personColumns = `id, phone, whatsapp, email, first_name, middle_name, last_name,
	gender, date_of_birth, blood_group, religion, community,
	education, occupation, occupation_details, marital_status, matrimonial_status,
	address, pincode, area, photo_url, profile_completed, created_at, updated_at`

// StorePerson inserts a new person.
func (s *Store) StorePerson(ctx context.Context, p *types.Person) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("%w: person ID is required", storage.ErrInvalidInput)
	}
	if p.Phone == "" {
		return fmt.Errorf("%w: person phone is required", storage.ErrInvalidInput)
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO persons (`+personColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID, p.Phone, ns(p.WhatsApp), ns(p.Email), p.FirstName, ns(p.MiddleName), ns(p.LastName),
		ns(string(p.Gender)), nt(p.DateOfBirth), ns(p.BloodGroup), ns(p.Religion), ns(p.Community),
		ns(p.Education), ns(p.Occupation), ns(p.OccupationDetails), ns(p.MaritalStatus), ns(p.MatrimonialStatus),
		ns(p.Address), ns(p.Pincode), ns(p.Area), ns(p.PhotoURL), p.ProfileCompleted, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store person: %w", err)
	}
	return nil
}

// GetPerson retrieves a person by ID.
func (s *Store) GetPerson(ctx context.Context, id string) (*types.Person, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM persons WHERE id = ?`, id)
	p, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return p, nil
}

// GetPersonByPhone retrieves a person by normalized phone number.
func (s *Store) GetPersonByPhone(ctx context.Context, phone string) (*types.Person, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM persons WHERE phone = ?`, phone)
	p, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person by phone: %w", err)
	}
	return p, nil
}

// GetPersons retrieves multiple persons by ID.
func (s *Store) GetPersons(ctx context.Context, ids []string) (map[string]*types.Person, error) {
	out := make(map[string]*types.Person, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := `SELECT ` + personColumns + ` FROM persons WHERE id IN (?` + strings.Repeat(", ?", len(ids)-1) + `)`
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get persons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// UpdatePerson overwrites an existing person's mutable fields. The phone
// contact key is never changed here.
func (s *Store) UpdatePerson(ctx context.Context, p *types.Person) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("%w: person ID is required", storage.ErrInvalidInput)
	}

	p.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE persons SET
			whatsapp = ?, email = ?,
			first_name = ?, middle_name = ?, last_name = ?,
			gender = ?, date_of_birth = ?, blood_group = ?, religion = ?, community = ?,
			education = ?, occupation = ?, occupation_details = ?,
			marital_status = ?, matrimonial_status = ?,
			address = ?, pincode = ?, area = ?,
			photo_url = ?, profile_completed = ?, updated_at = ?
		WHERE id = ?
	`,
		ns(p.WhatsApp), ns(p.Email),
		p.FirstName, ns(p.MiddleName), ns(p.LastName),
		ns(string(p.Gender)), nt(p.DateOfBirth), ns(p.BloodGroup), ns(p.Religion), ns(p.Community),
		ns(p.Education), ns(p.Occupation), ns(p.OccupationDetails),
		ns(p.MaritalStatus), ns(p.MatrimonialStatus),
		ns(p.Address), ns(p.Pincode), ns(p.Area),
		ns(p.PhotoURL), p.ProfileCompleted, p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}
	return requireRow(res)
}

// ---------------------------------------------------------------------------
// Relations
// ---------------------------------------------------------------------------

const relationColumns = `id, from_id, to_id, code, label, status,
	custom_name, custom_photo_url, created_by, created_at, updated_at`

// UpsertRelation inserts the edge or updates the existing row on the
// (from_id, to_id, code) key. Creator and custom fields only overwrite
// when set on the input; status always takes the input's value.
func (s *Store) UpsertRelation(ctx context.Context, rel *types.Relation) (*types.Relation, error) {
	if rel == nil || rel.FromID == "" || rel.ToID == "" || rel.Code == "" {
		return nil, fmt.Errorf("%w: relation endpoints and code are required", storage.ErrInvalidInput)
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO relations (`+relationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (from_id, to_id, code) DO UPDATE SET
			status = excluded.status,
			created_by = COALESCE(excluded.created_by, relations.created_by),
			custom_name = COALESCE(excluded.custom_name, relations.custom_name),
			custom_photo_url = COALESCE(excluded.custom_photo_url, relations.custom_photo_url),
			updated_at = excluded.updated_at
	`,
		rel.ID, rel.FromID, rel.ToID, rel.Code, ns(rel.Label), string(rel.Status),
		ns(rel.CustomName), ns(rel.CustomPhotoURL), ns(rel.CreatedBy), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert relation: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+relationColumns+` FROM relations
		WHERE from_id = ? AND to_id = ? AND code = ?
	`, rel.FromID, rel.ToID, rel.Code)
	stored, err := scanRelation(row)
	if err != nil {
		return nil, fmt.Errorf("failed to read back relation: %w", err)
	}
	return stored, nil
}

// GetRelation retrieves an edge by ID.
func (s *Store) GetRelation(ctx context.Context, id string) (*types.Relation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+relationColumns+` FROM relations WHERE id = ?`, id)
	rel, err := scanRelation(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get relation: %w", err)
	}
	return rel, nil
}

// UpdateRelation overwrites an edge's code, label and custom fields.
func (s *Store) UpdateRelation(ctx context.Context, rel *types.Relation) error {
	if rel == nil || rel.ID == "" {
		return fmt.Errorf("%w: relation ID is required", storage.ErrInvalidInput)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE relations SET
			code = ?, label = ?, custom_name = ?, custom_photo_url = ?, updated_at = ?
		WHERE id = ?
	`, rel.Code, ns(rel.Label), ns(rel.CustomName), ns(rel.CustomPhotoURL), time.Now().UTC(), rel.ID)
	if err != nil {
		return fmt.Errorf("failed to update relation: %w", err)
	}
	return requireRow(res)
}

// UpdateRelationStatus sets the lifecycle status of one edge.
func (s *Store) UpdateRelationStatus(ctx context.Context, id string, status types.RelationStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE relations SET status = ?, updated_at = ? WHERE id = ?
	`, string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update relation status: %w", err)
	}
	return requireRow(res)
}

// RewriteMirrorCode rewrites the code and label of every fromID→toID edge.
func (s *Store) RewriteMirrorCode(ctx context.Context, fromID, toID, code, label string) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE relations SET code = ?, label = ?, updated_at = ?
		WHERE from_id = ? AND to_id = ?
	`, code, ns(label), time.Now().UTC(), fromID, toID)
	if err != nil {
		return 0, fmt.Errorf("failed to rewrite mirror code: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count rewritten mirrors: %w", err)
	}
	return int(n), nil
}

// DeleteRelation removes one edge.
func (s *Store) DeleteRelation(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM relations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete relation: %w", err)
	}
	return requireRow(res)
}

// ListRelationsForViewer returns the viewer's own outgoing edges plus
// incoming PENDING/REJECTED edges, newest first.
func (s *Store) ListRelationsForViewer(ctx context.Context, personID string) ([]*types.Relation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+relationColumns+` FROM relations
		WHERE from_id = ?
		   OR (to_id = ? AND status IN ('PENDING', 'REJECTED'))
		ORDER BY created_at DESC, id DESC
	`, personID, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to list relations: %w", err)
	}
	defer rows.Close()
	return collectRelations(rows)
}

// ListPendingTo returns incoming PENDING edges, oldest first.
func (s *Store) ListPendingTo(ctx context.Context, personID string) ([]*types.Relation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+relationColumns+` FROM relations
		WHERE to_id = ? AND status = 'PENDING'
		ORDER BY created_at ASC, id ASC
	`, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending relations: %w", err)
	}
	defer rows.Close()
	return collectRelations(rows)
}

// ListTouching returns all non-REJECTED edges with either endpoint in ids.
func (s *Store) ListTouching(ctx context.Context, ids []string) ([]*types.Relation, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	in := `(?` + strings.Repeat(", ?", len(ids)-1) + `)`
	args := make([]interface{}, 0, 2*len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+relationColumns+` FROM relations
		WHERE (from_id IN `+in+` OR to_id IN `+in+`)
		  AND status != 'REJECTED'
		ORDER BY created_at ASC, id ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list touching relations: %w", err)
	}
	defer rows.Close()
	return collectRelations(rows)
}

// ---------------------------------------------------------------------------
// Notifications
// ---------------------------------------------------------------------------

const notificationColumns = `id, person_id, type, title, message, relation_id, state, read_at, created_at`

// CreateNotification appends a notification.
func (s *Store) CreateNotification(ctx context.Context, n *types.Notification) error {
	if n == nil || n.ID == "" || n.PersonID == "" {
		return fmt.Errorf("%w: notification ID and person are required", storage.ErrInvalidInput)
	}
	if n.State == "" {
		n.State = types.NotificationUnread
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.PersonID, string(n.Type), n.Title, n.Message, ns(n.RelationID), string(n.State), nt(n.ReadAt), n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetNotification retrieves a notification by ID.
func (s *Store) GetNotification(ctx context.Context, id string) (*types.Notification, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id)
	n, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// ListNotifications returns a person's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, personID string, state types.NotificationState, limit int) ([]*types.Notification, error) {
	if limit <= 0 {
		limit = storage.DefaultNotificationLimit
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE person_id = ?`
	args := []interface{}{personID}
	if state != "" {
		query += ` AND state = ?`
		args = append(args, string(state))
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []*types.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead flips one notification to READ.
func (s *Store) MarkNotificationRead(ctx context.Context, id string, readAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET state = 'READ', read_at = ? WHERE id = ?
	`, readAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return requireRow(res)
}

// MarkAllNotificationsRead flips all UNREAD notifications to READ.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, personID string, readAt time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET state = 'READ', read_at = ?
		WHERE person_id = ? AND state = 'UNREAD'
	`, readAt, personID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return int(n), nil
}

// ---------------------------------------------------------------------------
// Scan helpers
// ---------------------------------------------------------------------------

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPerson(sc rowScanner) (*types.Person, error) {
	var p types.Person
	var whatsapp, email, middleName, lastName, gender, bloodGroup, religion, community sql.NullString
	var education, occupation, occupationDetails, maritalStatus, matrimonialStatus sql.NullString
	var address, pincode, area, photoURL sql.NullString
	var dob sql.NullTime

	err := sc.Scan(
		&p.ID, &p.Phone, &whatsapp, &email, &p.FirstName, &middleName, &lastName,
		&gender, &dob, &bloodGroup, &religion, &community,
		&education, &occupation, &occupationDetails, &maritalStatus, &matrimonialStatus,
		&address, &pincode, &area, &photoURL, &p.ProfileCompleted, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.WhatsApp = whatsapp.String
	p.Email = email.String
	p.MiddleName = middleName.String
	p.LastName = lastName.String
	p.Gender = types.Gender(gender.String)
	p.BloodGroup = bloodGroup.String
	p.Religion = religion.String
	p.Community = community.String
	p.Education = education.String
	p.Occupation = occupation.String
	p.OccupationDetails = occupationDetails.String
	p.MaritalStatus = maritalStatus.String
	p.MatrimonialStatus = matrimonialStatus.String
	p.Address = address.String
	p.Pincode = pincode.String
	p.Area = area.String
	p.PhotoURL = photoURL.String
	if dob.Valid {
		t := dob.Time
		p.DateOfBirth = &t
	}
	return &p, nil
}

func scanRelation(sc rowScanner) (*types.Relation, error) {
	var rel types.Relation
	var label, customName, customPhotoURL, createdBy sql.NullString
	var status string

	err := sc.Scan(
		&rel.ID, &rel.FromID, &rel.ToID, &rel.Code, &label, &status,
		&customName, &customPhotoURL, &createdBy, &rel.CreatedAt, &rel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rel.Label = label.String
	rel.Status = types.RelationStatus(status)
	rel.CustomName = customName.String
	rel.CustomPhotoURL = customPhotoURL.String
	rel.CreatedBy = createdBy.String
	return &rel, nil
}

func scanNotification(sc rowScanner) (*types.Notification, error) {
	var n types.Notification
	var relationID sql.NullString
	var typ, state string
	var readAt sql.NullTime

	err := sc.Scan(&n.ID, &n.PersonID, &typ, &n.Title, &n.Message, &relationID, &state, &readAt, &n.CreatedAt)
	if err != nil {
		return nil, err
	}

	n.Type = types.NotificationType(typ)
	n.RelationID = relationID.String
	n.State = types.NotificationState(state)
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	return &n, nil
}

func collectRelations(rows *sql.Rows) ([]*types.Relation, error) {
	var out []*types.Relation
	for rows.Next() {
		rel, err := scanRelation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan relation: %w", err)
		}
		out = append(out, rel)
	}
	return out, rows.Err()
}

// requireRow converts a zero-rows-affected result into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ns converts an empty string to SQL NULL.
func ns(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nt converts a nil time pointer to SQL NULL.
func nt(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
