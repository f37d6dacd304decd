package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"chirp/backend/internal/metrics"
	"chirp/backend/internal/social"
	apperrors "chirp/backend/pkg/errors"
	"chirp/backend/pkg/logger"
)

// constraintViolation is the Neo4j status code raised by uniqueness constraints
const constraintViolation = "Neo.ClientError.Schema.ConstraintValidationFailed"

// Repository handles all Neo4j database operations and implements social.Store
type Repository struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

var _ social.Store = (*Repository)(nil)

// NewRepository creates a new graph repository. An empty database uses the server default.
func NewRepository(driver neo4j.DriverWithContext, database string) *Repository {
	return &Repository{
		driver:   driver,
		database: database,
		logger:   logger.Named("graph"),
	}
}

// Connect opens a driver and verifies connectivity
func Connect(ctx context.Context, uri, user, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}
	return driver, nil
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	return r.driver.Close(context.Background())
}

// schemaStatements are idempotent; the uniqueness constraints are what actually
// enforce one user per username and one tag per name under concurrent writes.
var schemaStatements = []string{
	`CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`,
	`CREATE CONSTRAINT user_username_unique IF NOT EXISTS FOR (u:User) REQUIRE u.username_lower IS UNIQUE`,
	`CREATE CONSTRAINT post_id_unique IF NOT EXISTS FOR (p:Post) REQUIRE p.id IS UNIQUE`,
	`CREATE CONSTRAINT tag_name_unique IF NOT EXISTS FOR (t:Tag) REQUIRE t.name IS UNIQUE`,
	`CREATE CONSTRAINT notification_id_unique IF NOT EXISTS FOR (n:Notification) REQUIRE n.id IS UNIQUE`,
	`CREATE INDEX post_created_at IF NOT EXISTS FOR (p:Post) ON (p.created_at)`,
	`CREATE INDEX notification_created_at IF NOT EXISTS FOR (n:Notification) ON (n.created_at)`,
}

// EnsureSchema creates constraints and indexes
func (r *Repository) EnsureSchema(ctx context.Context) error {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, stmt := range schemaStatements {
		result, err := session.Run(ctx, stmt, nil)
		if err != nil {
			return apperrors.NewGraphQueryFailed("ensure schema", err)
		}
		if _, err := result.Consume(ctx); err != nil {
			return apperrors.NewGraphQueryFailed("ensure schema", err)
		}
	}
	r.logger.Info("Graph schema ensured", zap.Int("statements", len(schemaStatements)))
	return nil
}

func (r *Repository) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: r.database,
	})
}

// executeRead runs work in one managed read transaction
func (r *Repository) executeRead(ctx context.Context, op string, work neo4j.ManagedTransactionWork) (any, error) {
	start := time.Now()
	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, work)
	metrics.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, r.wrap(op, err)
	}
	return result, nil
}

// executeWrite runs work in one managed write transaction. Returning an error
// from work rolls the whole transaction back.
func (r *Repository) executeWrite(ctx context.Context, op string, work neo4j.ManagedTransactionWork) (any, error) {
	start := time.Now()
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, work)
	metrics.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, r.wrap(op, err)
	}
	return result, nil
}

// wrap passes domain errors through and turns driver errors into graph errors
func (r *Repository) wrap(op string, err error) error {
	if apperrors.IsNotFound(err) || apperrors.IsInvalidArgument(err) || apperrors.IsForbidden(err) {
		return err
	}
	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) && neoErr.Code == constraintViolation {
		return apperrors.NewInvalidArgument(op, "unique constraint violated")
	}
	r.logger.Error("Graph query failed", zap.String("operation", op), zap.Error(err))
	return apperrors.NewGraphQueryFailed(op, err)
}

// collect runs a query inside tx and returns all records
func collect(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any) ([]*neo4j.Record, error) {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return result.Collect(ctx)
}

// first runs a query inside tx and returns the first record, or nil when there is none
func first(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any) (*neo4j.Record, error) {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if result.Next(ctx) {
		return result.Record(), nil
	}
	return nil, result.Err()
}

// counters runs a write query inside tx and returns its update statistics
func counters(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any) (neo4j.Counters, error) {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	summary, err := result.Consume(ctx)
	if err != nil {
		return nil, err
	}
	return summary.Counters(), nil
}

func pageParams(params map[string]any, page social.Page) map[string]any {
	params["skip"] = int64(page.Skip)
	params["limit"] = int64(page.Limit)
	return params
}

// isoTime formats t for datetime($param) in Cypher
func isoTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func unexpected(op string, v any) error {
	return fmt.Errorf("%s: unexpected transaction result %T", op, v)
}
