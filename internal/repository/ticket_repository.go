package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketFilter captures tenant-scoped listing parameters.
type TicketFilter struct {
	CompanyID   string
	RequesterID *string
	AgentID     *string
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	Category    *string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence. Every read is filtered by
// company_id; a ticket id from another tenant behaves as not found.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, companyID, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListActiveWithDeadlines(ctx context.Context, limit int) ([]domain.Ticket, error)
	UpdateSLAFields(ctx context.Context, companyID, id string, firstResponse, resolution time.Time, status domain.SLAStatus) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, external_key, company_id, requester_id, contact_id, agent_id,
        title, description, category, status, priority,
        classification, suggested_priority, confidence_score, needs_additional_info, needs_human_review,
        first_response_deadline, resolution_deadline, sla_status, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (external_key, company_id, requester_id, contact_id, agent_id,
            title, description, category, status, priority,
            first_response_deadline, resolution_deadline, sla_status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.CompanyID,
		ticket.RequesterID,
		ticket.ContactID,
		ticket.AgentID,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Status,
		ticket.Priority,
		ticket.FirstResponseDeadline,
		ticket.ResolutionDeadline,
		ticket.SLAStatus,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET agent_id=$1, contact_id=$2, title=$3, description=$4, category=$5,
            status=$6, priority=$7,
            classification=$8, suggested_priority=$9, confidence_score=$10,
            needs_additional_info=$11, needs_human_review=$12,
            first_response_deadline=$13, resolution_deadline=$14, sla_status=$15,
            updated_at=NOW()
        WHERE id=$16 AND company_id=$17
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.AgentID,
		ticket.ContactID,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Status,
		ticket.Priority,
		ticket.Triage.Classification,
		ticket.Triage.SuggestedPriority,
		ticket.Triage.ConfidenceScore,
		ticket.Triage.NeedsAdditionalInfo,
		ticket.Triage.NeedsHumanReview,
		ticket.FirstResponseDeadline,
		ticket.ResolutionDeadline,
		ticket.SLAStatus,
		ticket.ID,
		ticket.CompanyID,
	).Scan(&ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, companyID, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1 AND company_id=$2`
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, id, companyID), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"company_id=$1"}
	args := []any{filter.CompanyID}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_id=$%d", len(args)))
	}
	if filter.AgentID != nil {
		args = append(args, *filter.AgentID)
		clauses = append(clauses, fmt.Sprintf("agent_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListActiveWithDeadlines(ctx context.Context, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 200
	}
	query := fmt.Sprintf(`SELECT %s FROM tickets
        WHERE status NOT IN ('resolved','closed')
          AND resolution_deadline IS NOT NULL
          AND (sla_status IS NULL OR sla_status <> 'breached')
        ORDER BY resolution_deadline ASC LIMIT %d`, ticketColumns, limit)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) UpdateSLAFields(ctx context.Context, companyID, id string, firstResponse, resolution time.Time, status domain.SLAStatus) error {
	const query = `
        UPDATE tickets SET first_response_deadline=$1, resolution_deadline=$2, sla_status=$3, updated_at=NOW()
        WHERE id=$4 AND company_id=$5`
	cmd, err := r.pool.Exec(ctx, query, firstResponse, resolution, status, id, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.CompanyID,
		&ticket.RequesterID,
		&ticket.ContactID,
		&ticket.AgentID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Triage.Classification,
		&ticket.Triage.SuggestedPriority,
		&ticket.Triage.ConfidenceScore,
		&ticket.Triage.NeedsAdditionalInfo,
		&ticket.Triage.NeedsHumanReview,
		&ticket.FirstResponseDeadline,
		&ticket.ResolutionDeadline,
		&ticket.SLAStatus,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
