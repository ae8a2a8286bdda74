package postgres

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
	stmt := `INSERT INTO "user" (` + strings.Join(fields, ", ") + `) VALUES (` + placeholders(len(args)) + `) RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create user")
	}
	return create, nil
}

func (d *DB) UpdateUser(ctx context.Context, update *store.UpdateUser) (*store.User, error) {
	set, args := []string{}, []any{}
	if v := update.Email; v != nil {
		set, args = append(set, "email = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Age; v != nil {
		set, args = append(set, "age = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Height; v != nil {
		set, args = append(set, "height = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Weight; v != nil {
		set, args = append(set, "weight = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Gender; v != nil {
		set, args = append(set, "gender = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Goal; v != nil {
		set, args = append(set, "goal = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.ActivityLevel; v != nil {
		set, args = append(set, "activity_level = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.UpdatedTs; v != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(set) == 0 {
		return nil, errors.New("no fields to update")
	}

	args = append(args, update.ID)
	stmt := `UPDATE "user" SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + ` RETURNING ` + userColumns
	user := &store.User{}
	if err := scanUser(d.db.QueryRowContext(ctx, stmt, args...), user); err != nil {
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
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Username; v != nil {
		where, args = append(where, "username = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Email; v != nil {
		where, args = append(where, "email = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `SELECT ` + userColumns + ` FROM "user" WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id ASC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	defer rows.Close()

	list := make([]*store.User, 0)
	for rows.Next() {
		user := &store.User{}
		if err := scanUser(rows, user); err != nil {
			return nil, errors.Wrap(err, "failed to scan user")
		}
		list = append(list, user)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate users")
	}
	return list, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, user *store.User) error {
	return row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Age, &user.Height, &user.Weight, &user.Gender,
		&user.Goal, &user.ActivityLevel, &user.CreatedTs, &user.UpdatedTs,
	)
}
