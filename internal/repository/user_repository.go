package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/couvev/WashUp-Backend/internal/model"
	"github.com/couvev/WashUp-Backend/internal/utils"
)

// UserRepo provides access to the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user with a bcrypt-hashed password and returns its ID.
func (r *UserRepo) Create(ctx context.Context, name, email, password, cpf, phone, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, cpf, phone, role) VALUES (?,?,?,?,?,?)",
		name, email, hash, cpf, phone, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, storeError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeError(err)
	}
	return uint64(id), nil
}

const userColumns = "id,name,email,password_hash,cpf,phone,role,is_active,created_at,updated_at"

// GetByEmail fetches a user by normalized email. A missing user is
// reported as sql.ErrNoRows; any other failure is tagged as a store
// problem.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CPF, &u.Phone, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return u, storeError(err)
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CPF, &u.Phone, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return u, storeError(err)
	}
	return u, err
}

// List returns all registered users ordered by id. The caller is
// responsible for stripping sensitive fields before serving the result.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()
	out := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CPF, &u.Phone, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, storeError(err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err)
	}
	return out, nil
}

// Exists reports whether an active account with the given id is
// registered. The booking service validates requesters with this before
// reserving a slot.
func (r *UserRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE id=? AND is_active=1)", id).Scan(&exists)
	if err != nil {
		return false, storeError(err)
	}
	return exists, nil
}
