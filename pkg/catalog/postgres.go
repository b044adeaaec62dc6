package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ibakshay/nest.land/pkg/pg"
)

// PostgresStore implements Store on a packages/uploads schema managed by the
// goose migrations in ./migrations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an established connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// GetPackage retrieves a package record with its uploads in publish order.
func (s *PostgresStore) GetPackage(ctx context.Context, name string) (*Package, error) {
	pkg := &Package{Name: name}

	err := s.pool.QueryRow(ctx,
		`SELECT owner, created_at, updated_at FROM packages WHERE name = $1`,
		name,
	).Scan(&pkg.Owner, &pkg.CreatedAt, &pkg.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("catalog: query package: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT version, description, files, created_at
		 FROM uploads WHERE package_name = $1 ORDER BY created_at, id`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: query uploads: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var up Upload
		var files []byte
		if err := rows.Scan(&up.Version, &up.Description, &files, &up.CreatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan upload: %w", err)
		}
		if err := json.Unmarshal(files, &up.Files); err != nil {
			return nil, fmt.Errorf("catalog: decode file map: %w", err)
		}
		pkg.Uploads = append(pkg.Uploads, up)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate uploads: %w", err)
	}

	return pkg, nil
}

// ListPackages returns summaries ordered by name.
func (s *PostgresStore) ListPackages(ctx context.Context) ([]Summary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT p.name, p.owner, count(u.id),
		        (SELECT version FROM uploads
		         WHERE package_name = p.name ORDER BY created_at DESC, id DESC LIMIT 1),
		        (SELECT description FROM uploads
		         WHERE package_name = p.name ORDER BY created_at DESC, id DESC LIMIT 1)
		 FROM packages p
		 LEFT JOIN uploads u ON u.package_name = p.name
		 GROUP BY p.name, p.owner
		 ORDER BY p.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: list packages: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		var versions int64
		var latest, description *string
		if err := rows.Scan(&s.Name, &s.Owner, &versions, &latest, &description); err != nil {
			return nil, fmt.Errorf("catalog: scan summary: %w", err)
		}
		s.Versions = int(versions)
		if latest != nil {
			s.LatestVersion = *latest
		}
		if description != nil {
			s.Description = *description
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate summaries: %w", err)
	}

	return summaries, nil
}

// CreateUpload records a version inside a transaction so the package row and
// upload row commit together.
func (s *PostgresStore) CreateUpload(ctx context.Context, name string, isUpdate bool, owner uuid.UUID, upload Upload) error {
	files, err := json.Marshal(upload.Files)
	if err != nil {
		return fmt.Errorf("catalog: encode file map: %w", err)
	}

	createdAt := upload.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO packages (name, owner, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)
		 ON CONFLICT (name) DO UPDATE SET updated_at = EXCLUDED.updated_at`,
		name, owner, createdAt,
	)
	if err != nil {
		return fmt.Errorf("catalog: upsert package: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO uploads (package_name, version, description, files, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		name, upload.Version, upload.Description, files, createdAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrVersionExists
		}
		return fmt.Errorf("catalog: insert upload: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("catalog: commit: %w", err)
	}
	return nil
}
