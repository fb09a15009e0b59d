package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/cahier-api/internal/apperror"
	"github.com/sakif/cahier-api/internal/model"
	"github.com/sakif/cahier-api/internal/repository"
)

var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, name, email, address, phone_number, password, job_title,
	department, company, location, bio, profile_pic, plan, member_since, last_login`

// CreateUser generates an xid for the user and inserts it. A duplicate email
// is reported as a conflict: the existence check in the service can race with
// another signup, and the UNIQUE constraint is the final word.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	if user.Plan == "" {
		user.Plan = model.DefaultPlan
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.Address, user.PhoneNumber, user.PasswordHash,
		user.JobTitle, user.Department, user.Company, user.Location, user.Bio,
		user.ProfilePic, user.Plan, user.MemberSince.UTC(), user.LastLogin.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("email", "Email is already in use!")
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}
	return nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundMessage("User not found")
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return user, nil
}

func (db *DB) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking user email: %w", err)
	}
	return exists, nil
}

// UpdateUser overwrites every column except id, email and member_since.
func (db *DB) UpdateUser(ctx context.Context, user *model.User) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users
		 SET name = ?, address = ?, phone_number = ?, password = ?, job_title = ?,
		     department = ?, company = ?, location = ?, bio = ?, profile_pic = ?,
		     plan = ?, last_login = ?
		 WHERE id = ?`,
		user.Name, user.Address, user.PhoneNumber, user.PasswordHash, user.JobTitle,
		user.Department, user.Company, user.Location, user.Bio, user.ProfilePic,
		user.Plan, user.LastLogin.UTC(),
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("User", user.ID)
	}
	return nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var memberSince, lastLogin time.Time
	if err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Address, &u.PhoneNumber, &u.PasswordHash, &u.JobTitle,
		&u.Department, &u.Company, &u.Location, &u.Bio, &u.ProfilePic, &u.Plan,
		&memberSince, &lastLogin,
	); err != nil {
		return nil, err
	}
	u.MemberSince = memberSince.UTC()
	u.LastLogin = lastLogin.UTC()
	return &u, nil
}
