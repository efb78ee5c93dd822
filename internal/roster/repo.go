package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campusattend/internal/auth"
)

// Repository persists the student/staff directories and face links in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListStudents returns the directory ordered by roll number.
func (r *Repository) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT roll_number, name, department, year, section, email, phone,
		       verified, block_permanent, block_expires_at, blocked_by, created_at
		FROM students
		ORDER BY roll_number
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

// GetStudent returns a single student by roll number, or nil when absent.
func (r *Repository) GetStudent(ctx context.Context, roll string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT roll_number, name, department, year, section, email, phone,
		       verified, block_permanent, block_expires_at, blocked_by, created_at
		FROM students WHERE roll_number = $1
	`, roll)
	st, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

// UpsertStudent creates or updates a student keyed by roll number.
func (r *Repository) UpsertStudent(ctx context.Context, st Student) error {
	if st.RollNumber == "" {
		return errors.New("roll number required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO students (roll_number, name, department, year, section, email, phone)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (roll_number) DO UPDATE SET
			name = EXCLUDED.name,
			department = EXCLUDED.department,
			year = EXCLUDED.year,
			section = EXCLUDED.section,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			updated_at = NOW()
	`, st.RollNumber, st.Name, st.Department, st.Year, st.Section, st.Email, st.Phone)
	return err
}

// BlockStudent records a block. A nil expiresAt with permanent=false is
// rejected since it would encode an unblocked state.
func (r *Repository) BlockStudent(ctx context.Context, roll string, permanent bool, expiresAt *time.Time, blockedBy string) error {
	if !permanent && expiresAt == nil {
		return errors.New("block requires an expiry or the permanent flag")
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE students
		SET block_permanent = $2, block_expires_at = $3, blocked_by = $4, updated_at = NOW()
		WHERE roll_number = $1
	`, roll, permanent, expiresAt, blockedBy)
	return err
}

// UnblockStudent clears block state.
func (r *Repository) UnblockStudent(ctx context.Context, roll string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE students
		SET block_permanent = FALSE, block_expires_at = NULL, blocked_by = '', updated_at = NOW()
		WHERE roll_number = $1
	`, roll)
	return err
}

// FaceLinks loads the full persistent-id to roll-number mapping.
func (r *Repository) FaceLinks(ctx context.Context) (FaceLinks, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT persistent_id, roll_number FROM face_links`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make(FaceLinks)
	for rows.Next() {
		var pid int
		var roll string
		if err := rows.Scan(&pid, &roll); err != nil {
			return nil, err
		}
		links[pid] = roll
	}
	return links, rows.Err()
}

// LinkFace binds a persistent id to a roll number, replacing any
// previous binding for that id.
func (r *Repository) LinkFace(ctx context.Context, persistentID int, roll string) error {
	if roll == "" {
		return errors.New("roll number required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO face_links (persistent_id, roll_number)
		VALUES ($1, $2)
		ON CONFLICT (persistent_id) DO UPDATE SET roll_number = EXCLUDED.roll_number
	`, persistentID, roll)
	return err
}

// ListStaff returns the staff directory.
func (r *Repository) ListStaff(ctx context.Context) ([]Staff, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT staff_id, name, designation, department, year, section,
		       is_blocked, present_today, created_at
		FROM staff
		ORDER BY staff_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

// GetStaff returns a staff member by id, or nil when absent.
func (r *Repository) GetStaff(ctx context.Context, staffID string) (*Staff, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT staff_id, name, designation, department, year, section,
		       is_blocked, present_today, created_at
		FROM staff WHERE staff_id = $1
	`, staffID)
	s, err := scanStaff(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// CreateStaff provisions a staff account with credentials, keyed by
// staff id. Re-provisioning an existing id rotates the password.
func (r *Repository) CreateStaff(ctx context.Context, s Staff, passwordHash string) error {
	if s.StaffID == "" || passwordHash == "" {
		return errors.New("staff id and password hash required")
	}
	if !s.Designation.Valid() {
		return fmt.Errorf("unknown designation %q", s.Designation)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO staff (staff_id, name, designation, department, year, section, password_hash)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (staff_id) DO UPDATE SET
			name = EXCLUDED.name,
			designation = EXCLUDED.designation,
			department = EXCLUDED.department,
			year = EXCLUDED.year,
			section = EXCLUDED.section,
			password_hash = EXCLUDED.password_hash,
			updated_at = NOW()
	`, s.StaffID, s.Name, string(s.Designation), s.Department, s.Year, s.Section, passwordHash)
	return err
}

// CountStaff returns the number of staff rows. Startup uses it to decide
// whether the bootstrap principal is still needed.
func (r *Repository) CountStaff(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM staff`).Scan(&n)
	return n, err
}

// SetStaffPresence records whether a staff member is in today.
func (r *Repository) SetStaffPresence(ctx context.Context, staffID string, present bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE staff SET present_today = $2, updated_at = NOW() WHERE staff_id = $1
	`, staffID, present)
	return err
}

// StaffCredentials returns the stored password hash for login checks.
func (r *Repository) StaffCredentials(ctx context.Context, staffID string) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx,
		`SELECT password_hash FROM staff WHERE staff_id = $1`, staffID,
	).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return hash, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(row scanner) (Student, error) {
	var st Student
	err := row.Scan(&st.RollNumber, &st.Name, &st.Department, &st.Year, &st.Section,
		&st.Email, &st.Phone, &st.Verified, &st.BlockPermanent, &st.BlockExpiresAt,
		&st.BlockedBy, &st.CreatedAt)
	return st, err
}

func scanStaff(row scanner) (Staff, error) {
	var s Staff
	var role string
	err := row.Scan(&s.StaffID, &s.Name, &role, &s.Department, &s.Year, &s.Section,
		&s.IsBlocked, &s.PresentToday, &s.CreatedAt)
	s.Designation = auth.Role(role)
	return s, err
}
