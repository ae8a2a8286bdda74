package sqlite

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/nutribot/store"
)

const foodSelect = `SELECT f.fdc_id, f.description, f.data_type, COALESCE(fc.description, ''), f.brand_owner, f.brand_name,
	f.ingredients, f.serving_size, f.serving_size_unit
	FROM food f
	LEFT JOIN food_category fc ON f.food_category_id = fc.id`

func (d *DB) ListFoods(ctx context.Context, find *store.FindFood) ([]*store.Food, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.FdcID; v != nil {
		where, args = append(where, "f.fdc_id = ?"), append(args, *v)
	}
	if len(find.FdcIDs) > 0 {
		where, args = append(where, "f.fdc_id IN ("+placeholders(len(find.FdcIDs))+")"), append(args, int32Args(find.FdcIDs)...)
	}
	if v := find.Query; v != nil {
		// LIKE is case-insensitive for ASCII in SQLite.
		pattern := "%" + *v + "%"
		where, args = append(where, "(f.description LIKE ? OR f.brand_name LIKE ?)"), append(args, pattern, pattern)
	}
	if v := find.Category; v != nil {
		where, args = append(where, "fc.description = ?"), append(args, *v)
	}
	if v := find.DataType; v != nil {
		where, args = append(where, "f.data_type = ?"), append(args, *v)
	}

	query := foodSelect + " WHERE " + strings.Join(where, " AND ") + " ORDER BY length(f.description) ASC, f.fdc_id ASC"
	if find.Limit != nil {
		query, args = query+" LIMIT ?", append(args, *find.Limit)
	}
	return d.queryFoods(ctx, query, args...)
}

func (d *DB) SearchFoodsByNutrients(ctx context.Context, find *store.FindFoodByNutrients) ([]*store.Food, error) {
	where, args := []string{"1 = 1"}, []any{}
	cond := func(nutrient, op string, value float64) {
		where = append(where, `EXISTS (SELECT 1 FROM food_nutrient fn JOIN nutrient n ON fn.nutrient_id = n.id
			WHERE fn.fdc_id = f.fdc_id AND n.name = ? AND fn.amount `+op+` ?)`)
		args = append(args, nutrient, value)
	}
	if v := find.MinProtein; v != nil {
		cond("Protein", ">=", *v)
	}
	if v := find.MaxCalories; v != nil {
		cond("Energy", "<=", *v)
	}
	if v := find.MaxFat; v != nil {
		cond("Total lipid (fat)", "<=", *v)
	}
	if v := find.MaxCarbs; v != nil {
		cond("Carbohydrate, by difference", "<=", *v)
	}
	if v := find.Category; v != nil {
		where, args = append(where, "fc.description = ?"), append(args, *v)
	}

	limit := find.Limit
	if limit <= 0 {
		limit = 50
	}
	query := foodSelect + " WHERE " + strings.Join(where, " AND ") + " ORDER BY f.fdc_id ASC LIMIT ?"
	return d.queryFoods(ctx, query, append(args, limit)...)
}

func (d *DB) queryFoods(ctx context.Context, query string, args ...any) ([]*store.Food, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list foods")
	}
	defer rows.Close()

	list := make([]*store.Food, 0)
	for rows.Next() {
		f := &store.Food{}
		if err := rows.Scan(&f.FdcID, &f.Description, &f.DataType, &f.Category, &f.BrandOwner, &f.BrandName,
			&f.Ingredients, &f.ServingSize, &f.ServingSizeUnit); err != nil {
			return nil, errors.Wrap(err, "failed to scan food")
		}
		list = append(list, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate foods")
	}
	return list, nil
}

func (d *DB) ListFoodNutrients(ctx context.Context, fdcIDs []int32) ([]*store.FoodNutrient, error) {
	query := `SELECT fn.fdc_id, n.name, n.unit_name, fn.amount
		FROM food_nutrient fn
		JOIN nutrient n ON fn.nutrient_id = n.id
		WHERE fn.fdc_id IN (` + placeholders(len(fdcIDs)) + `) AND n.name IN (` + placeholders(len(store.TrackedNutrientNames)) + `)`
	args := append(int32Args(fdcIDs), stringArgs(store.TrackedNutrientNames)...)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list food nutrients")
	}
	defer rows.Close()

	list := make([]*store.FoodNutrient, 0)
	for rows.Next() {
		n := &store.FoodNutrient{}
		if err := rows.Scan(&n.FdcID, &n.Name, &n.UnitName, &n.Amount); err != nil {
			return nil, errors.Wrap(err, "failed to scan food nutrient")
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate food nutrients")
	}
	return list, nil
}

func (d *DB) ListFoodPortions(ctx context.Context, fdcID int32) ([]*store.FoodPortion, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT fdc_id, seq_num, portion_description, gram_weight, modifier
		FROM food_portion WHERE fdc_id = ? ORDER BY seq_num ASC`, fdcID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list food portions")
	}
	defer rows.Close()

	list := make([]*store.FoodPortion, 0)
	for rows.Next() {
		p := &store.FoodPortion{}
		if err := rows.Scan(&p.FdcID, &p.SeqNum, &p.Description, &p.GramWeight, &p.Modifier); err != nil {
			return nil, errors.Wrap(err, "failed to scan food portion")
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate food portions")
	}
	return list, nil
}

func (d *DB) ListFoodCategories(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT DISTINCT description FROM food_category ORDER BY description`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list food categories")
	}
	defer rows.Close()

	list := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, errors.Wrap(err, "failed to scan food category")
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
