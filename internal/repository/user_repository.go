package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/customer-auth/internal/model"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

const userColumns = "customer_id,email,password_hash,password_salt,is_active,country,language,verification_code,verification_code_expiry"

// UserRepo persists customers in the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// FindByEmail fetches a user by exact e-mail.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// FindByID fetches a user by customer id.
func (r *UserRepo) FindByID(ctx context.Context, customerID string) (*model.User, error) {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE customer_id=? LIMIT 1", customerID)
}

func (r *UserRepo) findOne(ctx context.Context, query string, arg any) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

// CreateMany inserts users in a single transaction; either all rows are
// written or none.
func (r *UserRepo) CreateMany(ctx context.Context, users []*model.User) error {
	return withTx(ctx, r.DB, func(tx DBTX) error {
		for _, u := range users {
			if err := insertUser(ctx, tx, u); err != nil {
				return fmt.Errorf("insert %s: %w", u.Email, err)
			}
		}
		return nil
	})
}

func insertUser(ctx context.Context, db DBTX, u *model.User) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?,?,?,?,?,?,?,?,?)",
		u.CustomerID, u.Email, emptyAsNull(u.PasswordHash), emptyAsNull(u.PasswordSalt), u.IsActive, u.Country, u.Language,
		nullString(u.VerificationCode), nullTime(u.VerificationCodeExpiry))
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return ErrEmailExists
	}
	return err
}

// SaveVerificationCode writes the pending reset code and its expiry.  A
// later call overwrites an earlier one (last write wins).
func (r *UserRepo) SaveVerificationCode(ctx context.Context, u *model.User) error {
	if (u.VerificationCode == nil) != (u.VerificationCodeExpiry == nil) {
		return errors.New("verification code and expiry must be set together")
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET verification_code=?, verification_code_expiry=? WHERE customer_id=?",
		nullString(u.VerificationCode), nullTime(u.VerificationCodeExpiry), u.CustomerID)
	if err != nil {
		return fmt.Errorf("save verification code: %w", err)
	}
	return requireRow(res, ErrNotFound)
}

// CompletePasswordReset stores the new credentials on u and clears the reset
// code in one statement, but only while the stored code still equals code
// and has not expired at now.  Otherwise it returns ErrStaleResetCode and
// changes nothing.
func (r *UserRepo) CompletePasswordReset(ctx context.Context, u *model.User, code string, now time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users
		    SET password_hash=?, password_salt=?, verification_code=NULL, verification_code_expiry=NULL
		  WHERE customer_id=? AND verification_code=? AND verification_code_expiry>=?`,
		u.PasswordHash, u.PasswordSalt, u.CustomerID, code, now.UTC())
	if err != nil {
		return fmt.Errorf("complete password reset: %w", err)
	}
	return requireRow(res, ErrStaleResetCode)
}

// UpdatePassword writes u's password hash and salt.
func (r *UserRepo) UpdatePassword(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, password_salt=? WHERE customer_id=?",
		emptyAsNull(u.PasswordHash), emptyAsNull(u.PasswordSalt), u.CustomerID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireRow(res, ErrNotFound)
}

// UpdateLanguage sets the language of an existing user.
func (r *UserRepo) UpdateLanguage(ctx context.Context, customerID, language string) error {
	// Affected rows count only changed rows by default, so existence is
	// checked separately when nothing changed.
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET language=? WHERE customer_id=?", language, customerID)
	if err != nil {
		return fmt.Errorf("update language: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	var exists int
	err = r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE customer_id=? LIMIT 1", customerID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update language: %w", err)
	}
	return nil
}

func requireRow(res sql.Result, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return none
	}
	return nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		u          model.User
		hash, salt sql.NullString
		code       sql.NullString
		exp        sql.NullTime
	)
	if err := row.Scan(&u.CustomerID, &u.Email, &hash, &salt, &u.IsActive,
		&u.Country, &u.Language, &code, &exp); err != nil {
		return nil, err
	}
	u.PasswordHash, u.PasswordSalt = hash.String, salt.String
	u.Language = strings.TrimSpace(u.Language)
	// The pair is only meaningful together.
	if code.Valid && exp.Valid {
		c, e := code.String, exp.Time.UTC()
		u.VerificationCode, u.VerificationCodeExpiry = &c, &e
	}
	return &u, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func emptyAsNull(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
