package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jordanlanch/clientintel/pkg/database"
	"github.com/jordanlanch/clientintel/pkg/domain"
	"github.com/jordanlanch/clientintel/pkg/models"
)

// Store reads and writes clients with their interaction and status history.
type Store struct {
	db *sql.DB
}

// New creates a store over an opened, migrated database.
func New(client *database.Client) *Store {
	return &Store{db: client.DB}
}

const clientColumns = `id, nombre, telefono, email, empresa, estatus, proximo_contacto, ultimo_contacto, created_at`

// CreateClient inserts c and sets its ID. A zero CreatedAt is set to now.
func (s *Store) CreateClient(ctx context.Context, c *models.Client) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO clients (nombre, telefono, email, empresa, estatus, proximo_contacto, ultimo_contacto, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		c.Name, c.Phone, c.Email, c.Company, string(c.Status),
		nullTime(c.NextContactAt), nullTime(c.LastContactAt), c.CreatedAt.UTC(), c.CreatedAt.UTC(),
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// GetClient loads a client with its full history, most recent first.
func (s *Store) GetClient(ctx context.Context, id int) (*models.Client, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("client")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch client %d: %w", id, err)
	}

	clients := []models.Client{*c}
	if err := s.loadHistory(ctx, clients); err != nil {
		return nil, err
	}
	return &clients[0], nil
}

// ListFollowUpCandidates returns clients whose next contact is due by until
// and whose status is not in excluded, with history.
func (s *Store) ListFollowUpCandidates(ctx context.Context, until time.Time, excluded []models.Status) ([]models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients
		WHERE proximo_contacto IS NOT NULL AND proximo_contacto <= $1`
	args := []any{until.UTC()}
	if len(excluded) > 0 {
		query += ` AND estatus NOT IN (` + placeholders(2, len(excluded)) + `)`
		args = append(args, statusArgs(excluded)...)
	}
	query += ` ORDER BY proximo_contacto ASC, id ASC`

	return s.listWithHistory(ctx, query, args...)
}

// ListByStatuses returns every client in one of statuses, with history.
func (s *Store) ListByStatuses(ctx context.Context, statuses []models.Status) ([]models.Client, error) {
	if len(statuses) == 0 {
		return []models.Client{}, nil
	}
	query := `SELECT ` + clientColumns + ` FROM clients
		WHERE estatus IN (` + placeholders(1, len(statuses)) + `) ORDER BY id ASC`
	return s.listWithHistory(ctx, query, statusArgs(statuses)...)
}

// LogInteractionParams describes one logged touch and its effect on the client.
type LogInteractionParams struct {
	ClientID       int
	Type           string
	Content        string
	Result         string
	Outcome        models.Outcome
	PreviousStatus models.Status
	NewStatus      models.Status // empty keeps the current status
	NextContact    *time.Time    // nil clears the next contact
	At             time.Time
}

// LogInteraction records an interaction, a status change when the status
// differs, and updates the client's contact dates, all in one transaction.
func (s *Store) LogInteraction(ctx context.Context, p LogInteractionParams) (*models.Interaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	at := p.At.UTC()
	in := &models.Interaction{
		ClientID:  p.ClientID,
		Type:      p.Type,
		Content:   p.Content,
		Result:    p.Result,
		Outcome:   p.Outcome,
		CreatedAt: at,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO interactions (client_id, tipo, contenido, resultado, outcome, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		p.ClientID, p.Type, p.Content, p.Result, string(p.Outcome), at,
	).Scan(&in.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert interaction: %w", err)
	}

	status := p.PreviousStatus
	if p.NewStatus != "" && p.NewStatus != p.PreviousStatus {
		status = p.NewStatus
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO status_changes (client_id, estatus_anterior, estatus_nuevo, created_at) VALUES ($1, $2, $3, $4)`,
			p.ClientID, string(p.PreviousStatus), string(p.NewStatus), at,
		); err != nil {
			return nil, fmt.Errorf("failed to insert status change: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE clients SET estatus = $1, ultimo_contacto = $2, proximo_contacto = $3, updated_at = $4 WHERE id = $5`,
		string(status), at, nullTime(p.NextContact), at, p.ClientID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, domain.NewNotFoundError("client")
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit interaction: %w", err)
	}
	return in, nil
}

// ListInteractions returns one page of a client's interactions, most recent
// first, and the total count.
func (s *Store) ListInteractions(ctx context.Context, clientID, limit, offset int) ([]models.Interaction, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM interactions WHERE client_id = $1`, clientID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count interactions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_id, tipo, contenido, resultado, outcome, created_at FROM interactions
		 WHERE client_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		clientID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	out := make([]models.Interaction, 0, limit)
	for rows.Next() {
		it, err := scanInteraction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan interaction: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate interactions: %w", err)
	}
	return out, total, nil
}

func (s *Store) listWithHistory(ctx context.Context, query string, args ...any) ([]models.Client, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	clients := make([]models.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clients: %w", err)
	}
	rows.Close()

	if err := s.loadHistory(ctx, clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// loadHistory fills Interactions and StatusChanges for clients with one
// query per table.
func (s *Store) loadHistory(ctx context.Context, clients []models.Client) error {
	if len(clients) == 0 {
		return nil
	}

	index := make(map[int]int, len(clients))
	ids := make([]any, len(clients))
	for i := range clients {
		index[clients[i].ID] = i
		ids[i] = clients[i].ID
		clients[i].Interactions = []models.Interaction{}
		clients[i].StatusChanges = []models.StatusChange{}
	}
	in := placeholders(1, len(ids))

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_id, tipo, contenido, resultado, outcome, created_at FROM interactions
		 WHERE client_id IN (`+in+`) ORDER BY created_at DESC, id DESC`, ids...)
	if err != nil {
		return fmt.Errorf("failed to query interactions: %w", err)
	}
	for rows.Next() {
		it, err := scanInteraction(rows)
		if err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan interaction: %w", err)
		}
		c := &clients[index[it.ClientID]]
		c.Interactions = append(c.Interactions, it)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("failed to iterate interactions: %w", err)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, client_id, estatus_anterior, estatus_nuevo, created_at FROM status_changes
		 WHERE client_id IN (`+in+`) ORDER BY created_at DESC, id DESC`, ids...)
	if err != nil {
		return fmt.Errorf("failed to query status changes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sc models.StatusChange
		var from, to string
		if err := rows.Scan(&sc.ID, &sc.ClientID, &from, &to, &sc.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan status change: %w", err)
		}
		sc.FromStatus = models.Status(from)
		sc.ToStatus = models.Status(to)
		sc.CreatedAt = sc.CreatedAt.UTC()
		c := &clients[index[sc.ClientID]]
		c.StatusChanges = append(c.StatusChanges, sc)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate status changes: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInteraction(row scanner) (models.Interaction, error) {
	var it models.Interaction
	var outcome string
	if err := row.Scan(&it.ID, &it.ClientID, &it.Type, &it.Content, &it.Result, &outcome, &it.CreatedAt); err != nil {
		return it, err
	}
	it.Outcome = models.Outcome(outcome)
	it.CreatedAt = it.CreatedAt.UTC()
	return it, nil
}

func scanClient(row scanner) (*models.Client, error) {
	var c models.Client
	var status string
	var next, last sql.NullTime
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Company, &status, &next, &last, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Status = models.Status(status)
	c.CreatedAt = c.CreatedAt.UTC()
	if next.Valid {
		t := next.Time.UTC()
		c.NextContactAt = &t
	}
	if last.Valid {
		t := last.Time.UTC()
		c.LastContactAt = &t
	}
	return &c, nil
}

// placeholders returns "$start, $start+1, ..." for n arguments.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "$" + strconv.Itoa(start+i)
	}
	return strings.Join(parts, ", ")
}

func statusArgs(statuses []models.Status) []any {
	out := make([]any, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func nullTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC()
}
