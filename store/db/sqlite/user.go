package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/nutribot/store"
)

const userColumns = `id, username, email, password_hash, age, height, weight, gender, goal, activity_level, created_ts, updated_ts`

func (d *DB) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	fields := []string{"username", "email", "password_hash", "age", "height", "weight", "gender", "goal", "activity_level", "created_ts", "updated_ts"}
	args := []any{create.Username, create.Email, create.PasswordHash, create.Age, create.Height, create.Weight, create.Gender, create.Goal, create.ActivityLevel, create.CreatedTs, create.UpdatedTs}
	stmt := "INSERT INTO user (`" + strings.Join(fields, "`, `") + "`) VALUES (" + placeholders(len(args)) + ") RETURNING id"
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create user")
	}
	return create, nil
}

func (d *DB) UpdateUser(ctx context.Context, update *store.UpdateUser) (*store.User, error) {
	set, args := []string{}, []any{}
	if v := update.Email; v != nil {
		set, args = append(set, "email = ?"), append(args, *v)
	}
	if v := update.Age; v != nil {
		set, args = append(set, "age = ?"), append(args, *v)
	}
	if v := update.Height; v != nil {
		set, args = append(set, "height = ?"), append(args, *v)
	}
	if v := update.Weight; v != nil {
		set, args = append(set, "weight = ?"), append(args, *v)
	}
	if v := update.Gender; v != nil {
		set, args = append(set, "gender = ?"), append(args, *v)
	}
	if v := update.Goal; v != nil {
		set, args = append(set, "goal = ?"), append(args, *v)
	}
	if v := update.ActivityLevel; v != nil {
		set, args = append(set, "activity_level = ?"), append(args, *v)
	}
	if v := update.UpdatedTs; v != nil {
		set, args = append(set, "updated_ts = ?"), append(args, *v)
	}
	if len(set) == 0 {
		return nil, errors.New("no fields to update")
	}

	args = append(args, update.ID)
	stmt := "UPDATE user SET " + strings.Join(set, ", ") + " WHERE id = ? RETURNING " + userColumns
	user := &store.User{}
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Age, &user.Height, &user.Weight, &user.Gender,
		&user.Goal, &user.ActivityLevel, &user.CreatedTs, &user.UpdatedTs,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("user not found")
		}
		return nil, errors.Wrap(err, "failed to update user")
	}
	return user, nil
}

func (d *DB) ListUsers(ctx context.Context, find *store.FindUser) ([]*store.User, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.Username; v != nil {
		where, args = append(where, "username = ?"), append(args, *v)
	}
	if v := find.Email; v != nil {
		where, args = append(where, "email = ?"), append(args, *v)
	}

	query := "SELECT " + userColumns + " FROM user WHERE " + strings.Join(where, " AND ") + " ORDER BY id ASC"
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	defer rows.Close()

	list := make([]*store.User, 0)
	for rows.Next() {
		user := &store.User{}
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.PasswordHash,
			&user.Age, &user.Height, &user.Weight, &user.Gender,
			&user.Goal, &user.ActivityLevel, &user.CreatedTs, &user.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan user")
		}
		list = append(list, user)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate users")
	}
	return list, nil
}
