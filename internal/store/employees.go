package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/almacen/internal/model"
)

const employeeColumns = `id, user_id, first_name, last_name, email, phone, position, department,
	hire_date, is_active, activation_token, activation_token_created, created_at, updated_at`

func scanEmployee(row interface{ Scan(...any) error }, e *model.Employee) error {
	var phone, token sql.NullString
	if err := row.Scan(&e.ID, &e.UserID, &e.FirstName, &e.LastName, &e.Email, &phone,
		&e.Position, &e.Department, &e.HireDate, &e.IsActive, &token,
		&e.ActivationTokenCreated, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return err
	}
	e.Phone = phone.String
	e.ActivationToken = token.String
	return nil
}

// CreateEmployee inserts an employee record and returns it.
func CreateEmployee(ctx context.Context, db DBTX, e *model.Employee) (*model.Employee, error) {
	var hire any
	if e.HireDate != nil {
		hire = e.HireDate.UTC()
	}
	result, err := db.ExecContext(ctx,
		`INSERT INTO employees (first_name, last_name, email, phone, position, department, hire_date, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 1)`,
		e.FirstName, e.LastName, e.Email, nullString(e.Phone), e.Position, e.Department, hire,
	)
	if err != nil {
		return nil, fmt.Errorf("creating employee: %w", classify(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting employee id: %w", err)
	}
	return GetEmployee(ctx, db, id)
}

// GetEmployee returns an employee by ID.
func GetEmployee(ctx context.Context, db DBTX, id int64) (*model.Employee, error) {
	e := &model.Employee{}
	err := scanEmployee(db.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id), e)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting employee: %w", err)
	}
	return e, nil
}

// GetEmployeeByToken returns the employee holding an activation token.
func GetEmployeeByToken(ctx context.Context, db DBTX, token string) (*model.Employee, error) {
	if token == "" {
		return nil, nil
	}
	e := &model.Employee{}
	err := scanEmployee(db.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE activation_token = ?`, token), e)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting employee by token: %w", err)
	}
	return e, nil
}

// ListEmployees returns all employees ordered by name.
func ListEmployees(ctx context.Context, db DBTX) ([]model.Employee, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees ORDER BY last_name, first_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}
	defer rows.Close()

	var out []model.Employee
	for rows.Next() {
		var e model.Employee
		if err := scanEmployee(rows, &e); err != nil {
			return nil, fmt.Errorf("scanning employee: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SetActivationToken stores a freshly issued token and its issue time.
func SetActivationToken(ctx context.Context, db DBTX, id int64, token string, issued time.Time) error {
	_, err := db.ExecContext(ctx,
		`UPDATE employees SET activation_token = ?, activation_token_created = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		token, issued.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("setting activation token: %w", err)
	}
	return nil
}

// LinkEmployeeUser attaches a user to an employee and clears the activation
// token. It reports false if the employee already has a user.
func LinkEmployeeUser(ctx context.Context, db DBTX, id, userID int64) (bool, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE employees
		 SET user_id = ?, activation_token = NULL, activation_token_created = NULL, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id IS NULL`,
		userID, id,
	)
	if err != nil {
		return false, fmt.Errorf("linking employee user: %w", classify(err))
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// SetEmployeeActive marks an employee active or inactive.
func SetEmployeeActive(ctx context.Context, db DBTX, id int64, active bool) error {
	_, err := db.ExecContext(ctx,
		`UPDATE employees SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		active, id,
	)
	if err != nil {
		return fmt.Errorf("setting employee active: %w", err)
	}
	return nil
}
