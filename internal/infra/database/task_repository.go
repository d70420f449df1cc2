package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type TaskRepository struct {
	DB *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

const taskSelect = `
	SELECT t.id, t.title, t.description, t.due_date, t.priority, t.status,
		t.lead_id, TRIM(COALESCE(l.first_name, '') || ' ' || COALESCE(l.last_name, '')),
		t.deal_id, COALESCE(d.title, ''), t.call_id, t.assigned_to, t.completed_at,
		t.created_at, t.updated_at
	FROM tasks t
	LEFT JOIN leads l ON l.id = t.lead_id
	LEFT JOIN deals d ON d.id = t.deal_id
`

func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) error {
	query := `
		INSERT INTO tasks (id, title, description, due_date, priority, status, lead_id, deal_id,
			call_id, assigned_to, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.DB.ExecContext(ctx, query,
		task.ID,
		task.Title,
		nullString(task.Description),
		task.DueDate,
		task.Priority,
		task.Status,
		task.LeadID,
		task.DealID,
		task.CallID,
		nullString(task.AssignedTo),
		task.CompletedAt,
		task.CreatedAt,
		task.UpdatedAt,
	)
	return err
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*entity.Task, error) {
	query := taskSelect + ` WHERE t.id = $1 AND t.is_deleted = FALSE`

	task, err := scanTask(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	return task, err
}

func (r *TaskRepository) Update(ctx context.Context, task *entity.Task) error {
	query := `
		UPDATE tasks SET
			title = $2, description = $3, due_date = $4, priority = $5, lead_id = $6,
			deal_id = $7, call_id = $8, assigned_to = $9, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`
	res, err := r.DB.ExecContext(ctx, query,
		task.ID,
		task.Title,
		nullString(task.Description),
		task.DueDate,
		task.Priority,
		task.LeadID,
		task.DealID,
		task.CallID,
		nullString(task.AssignedTo),
	)
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func (r *TaskRepository) SetStatus(ctx context.Context, id, status string, completedAt *time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE tasks SET status = $2, completed_at = $3, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`,
		id, status, completedAt,
	)
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func (r *TaskRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE tasks SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`,
		id,
	)
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func (r *TaskRepository) List(ctx context.Context, filter entity.TaskFilter) ([]*entity.Task, error) {
	var (
		where = []string{"t.is_deleted = FALSE"}
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("t.status = $%d", len(args)))
	}
	if filter.AssignedTo != "" {
		args = append(args, filter.AssignedTo)
		where = append(where, fmt.Sprintf("t.assigned_to = $%d", len(args)))
	}
	if filter.LeadID != "" {
		args = append(args, filter.LeadID)
		where = append(where, fmt.Sprintf("t.lead_id = $%d", len(args)))
	}
	if filter.DealID != "" {
		args = append(args, filter.DealID)
		where = append(where, fmt.Sprintf("t.deal_id = $%d", len(args)))
	}
	if filter.Overdue {
		now := filter.Now
		if now.IsZero() {
			now = time.Now()
		}
		args = append(args, now)
		where = append(where, fmt.Sprintf("t.status = 'pending' AND t.due_date < $%d", len(args)))
	}

	query := taskSelect + ` WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY t.due_date ASC NULLS LAST, t.created_at DESC`
	query, args = paginate(query, args, filter.Limit, filter.Offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*entity.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func scanTask(row rowScanner) (*entity.Task, error) {
	var (
		task                    entity.Task
		description, assignedTo sql.NullString
		leadID, dealID, callID  sql.NullString
		dueDate, completedAt    sql.NullTime
	)
	err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&dueDate,
		&task.Priority,
		&task.Status,
		&leadID,
		&task.LeadName,
		&dealID,
		&task.DealTitle,
		&callID,
		&assignedTo,
		&completedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.Description = description.String
	task.AssignedTo = assignedTo.String
	task.LeadID = nullStringPtr(leadID)
	task.DealID = nullStringPtr(dealID)
	task.CallID = nullStringPtr(callID)
	task.DueDate = nullTimePtr(dueDate)
	task.CompletedAt = nullTimePtr(completedAt)
	return &task, nil
}
