package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/scrypster/banyan/internal/storage"
	"github.com/scrypster/banyan/pkg/types"
)

// Store implements storage.Store using PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore connects to PostgreSQL and creates the schema.
func NewStore(connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

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
func (s *Store) RunMigrations(migrationsDir string) error {
	mgr, err := storage.NewMigrationManager(s.db, migrationsDir, "postgres")
	if err != nil {
		return fmt.Errorf("postgres: failed to create migration manager: %w", err)
	}

	if err := mgr.Up(); err != nil {
		return fmt.Errorf("postgres: failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
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
	row := s.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM persons WHERE id = $1`, id)
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
	row := s.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM persons WHERE phone = $1`, phone)
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

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+personColumns+` FROM persons WHERE id = ANY($1)
	`, pq.Array(ids))
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

// UpdatePerson overwrites an existing person's mutable fields.
func (s *Store) UpdatePerson(ctx context.Context, p *types.Person) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("%w: person ID is required", storage.ErrInvalidInput)
	}

	p.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE persons SET
			whatsapp = $1, email = $2,
			first_name = $3, middle_name = $4, last_name = $5,
			gender = $6, date_of_birth = $7, blood_group = $8, religion = $9, community = $10,
			education = $11, occupation = $12, occupation_details = $13,
			marital_status = $14, matrimonial_status = $15,
			address = $16, pincode = $17, area = $18,
			photo_url = $19, profile_completed = $20, updated_at = $21
		WHERE id = $22
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

const relationColumns = `id, from_id, to_id, code, label, status,
	custom_name, custom_photo_url, created_by, created_at, updated_at`

// UpsertRelation inserts the edge or updates the existing row on the
// (from_id, to_id, code) key, returning the stored row.
func (s *Store) UpsertRelation(ctx context.Context, rel *types.Relation) (*types.Relation, error) {
	if rel == nil || rel.FromID == "" || rel.ToID == "" || rel.Code == "" {
		return nil, fmt.Errorf("%w: relation endpoints and code are required", storage.ErrInvalidInput)
	}

	now := time.Now().UTC()
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO relations (`+relationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (from_id, to_id, code) DO UPDATE SET
			status = EXCLUDED.status,
			created_by = COALESCE(EXCLUDED.created_by, relations.created_by),
			custom_name = COALESCE(EXCLUDED.custom_name, relations.custom_name),
			custom_photo_url = COALESCE(EXCLUDED.custom_photo_url, relations.custom_photo_url),
			updated_at = EXCLUDED.updated_at
		RETURNING `+relationColumns+`
	`,
		rel.ID, rel.FromID, rel.ToID, rel.Code, ns(rel.Label), string(rel.Status),
		ns(rel.CustomName), ns(rel.CustomPhotoURL), ns(rel.CreatedBy), now, now,
	)
	stored, err := scanRelation(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert relation: %w", err)
	}
	return stored, nil
}

// GetRelation retrieves an edge by ID.
func (s *Store) GetRelation(ctx context.Context, id string) (*types.Relation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+relationColumns+` FROM relations WHERE id = $1`, id)
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
			code = $1, label = $2, custom_name = $3, custom_photo_url = $4, updated_at = $5
		WHERE id = $6
	`, rel.Code, ns(rel.Label), ns(rel.CustomName), ns(rel.CustomPhotoURL), time.Now().UTC(), rel.ID)
	if err != nil {
		return fmt.Errorf("failed to update relation: %w", err)
	}
	return requireRow(res)
}

// UpdateRelationStatus sets the lifecycle status of one edge.
func (s *Store) UpdateRelationStatus(ctx context.Context, id string, status types.RelationStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE relations SET status = $1, updated_at = $2 WHERE id = $3
	`, string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update relation status: %w", err)
	}
	return requireRow(res)
}

// RewriteMirrorCode rewrites the code and label of every fromID→toID edge.
func (s *Store) RewriteMirrorCode(ctx context.Context, fromID, toID, code, label string) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE relations SET code = $1, label = $2, updated_at = $3
		WHERE from_id = $4 AND to_id = $5
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
	res, err := s.db.ExecContext(ctx, `DELETE FROM relations WHERE id = $1`, id)
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
		WHERE from_id = $1
		   OR (to_id = $1 AND status IN ('PENDING', 'REJECTED'))
		ORDER BY created_at DESC, id DESC
	`, personID)
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
		WHERE to_id = $1 AND status = 'PENDING'
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

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+relationColumns+` FROM relations
		WHERE (from_id = ANY($1) OR to_id = ANY($1))
		  AND status != 'REJECTED'
		ORDER BY created_at ASC, id ASC
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list touching relations: %w", err)
	}
	defer rows.Close()
	return collectRelations(rows)
}

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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, n.ID, n.PersonID, string(n.Type), n.Title, n.Message, ns(n.RelationID), string(n.State), nt(n.ReadAt), n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetNotification retrieves a notification by ID.
func (s *Store) GetNotification(ctx context.Context, id string) (*types.Notification, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
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

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE person_id = $1`
	args := []interface{}{personID}
	if state != "" {
		query += ` AND state = $2 ORDER BY created_at DESC, id DESC LIMIT $3`
		args = append(args, string(state), limit)
	} else {
		query += ` ORDER BY created_at DESC, id DESC LIMIT $2`
		args = append(args, limit)
	}

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
		UPDATE notifications SET state = 'READ', read_at = $1 WHERE id = $2
	`, readAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return requireRow(res)
}

// MarkAllNotificationsRead flips all UNREAD notifications to READ.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, personID string, readAt time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET state = 'READ', read_at = $1
		WHERE person_id = $2 AND state = 'UNREAD'
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

func ns(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nt(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
