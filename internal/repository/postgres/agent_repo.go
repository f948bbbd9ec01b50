package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type AgentRepo struct {
	DB *sql.DB
}

func NewAgentRepo(db *sql.DB) *AgentRepo {
	return &AgentRepo{DB: db}
}

// AgentInfo is the stored metadata of an uploaded artifact.
type AgentInfo struct {
	Name       string    `json:"name"`
	SHA256     string    `json:"sha256"`
	Size       int       `json:"size"`
	UploadedBy int64     `json:"uploaded_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r *AgentRepo) CreateAgent(ctx context.Context, info AgentInfo, artifact []byte) (*AgentInfo, error) {
	query := `
	INSERT INTO agents (name, sha256, size, artifact, uploaded_by)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at;
	`
	var uploadedBy sql.NullInt64
	if info.UploadedBy != 0 {
		uploadedBy = sql.NullInt64{Int64: info.UploadedBy, Valid: true}
	}
	err := r.DB.QueryRowContext(ctx, query, info.Name, info.SHA256, len(artifact), artifact, uploadedBy).Scan(&info.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to store agent %q: %w", info.Name, translate(err))
	}
	info.Size = len(artifact)
	return &info, nil
}

// GetArtifact returns the wasm bytes stored under name.
func (r *AgentRepo) GetArtifact(ctx context.Context, name string) ([]byte, error) {
	var artifact []byte
	err := r.DB.QueryRowContext(ctx, `SELECT artifact FROM agents WHERE name = $1;`, name).Scan(&artifact)
	if err != nil {
		return nil, fmt.Errorf("failed to load agent %q: %w", name, translate(err))
	}
	return artifact, nil
}

func (r *AgentRepo) ListAgents(ctx context.Context) ([]AgentInfo, error) {
	query := `SELECT name, sha256, size, COALESCE(uploaded_by, 0), created_at FROM agents ORDER BY created_at DESC;`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	defer rows.Close()

	agents := []AgentInfo{}
	for rows.Next() {
		var a AgentInfo
		if err := rows.Scan(&a.Name, &a.SHA256, &a.Size, &a.UploadedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}
