// admin.go - diagnostics journal for catalog loader failures
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// LoadFailure is one journaled loader failure.
type LoadFailure struct {
	ID        int       `json:"id"`
	Kind      string    `json:"kind"`
	Listing   string    `json:"listing"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}

type DiagnosticsStats struct {
	TotalFailures  int64            `json:"total_failures"`
	FailuresToday  int64            `json:"failures_today"`
	FailuresByKind map[string]int64 `json:"failures_by_kind"`
	RecentFailures []LoadFailure    `json:"recent_failures"`
}

// Journal records loader failures in sqlite. The default DSN is an
// in-memory database, so nothing outlives the process unless a file DSN is
// configured.
type Journal struct {
	db        *sql.DB
	retention time.Duration
	logger    *zap.Logger
}

func OpenJournal(dsn string, retention time.Duration, logger *zap.Logger) (*Journal, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// a single connection keeps an in-memory database alive and shared
	db.SetMaxOpenConns(1)

	j := &Journal{db: db, retention: retention, logger: logger}
	if err := j.init(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) init() error {
	_, err := j.db.Exec(`
	CREATE TABLE IF NOT EXISTS load_failures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		listing TEXT NOT NULL,
		detail TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record journals err. Journal errors are logged and otherwise ignored.
func (j *Journal) Record(ctx context.Context, err error) {
	if j == nil || err == nil {
		return
	}
	listing := ""
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		listing = loadErr.Listing
	}
	_, dbErr := j.db.ExecContext(context.WithoutCancel(ctx), `
		INSERT INTO load_failures (kind, listing, detail, timestamp)
		VALUES (?, ?, ?, ?)
	`, failureKind(err), listing, err.Error(), time.Now().UTC())
	if dbErr != nil {
		j.logger.Warn("error recording load failure", zap.Error(dbErr))
	}
}

// Cleanup removes entries older than the retention window.
func (j *Journal) Cleanup(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-j.retention)
	result, err := j.db.ExecContext(ctx, `DELETE FROM load_failures WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	rowsDeleted, _ := result.RowsAffected()
	if rowsDeleted > 0 {
		j.logger.Info("diagnostics cleanup", zap.Int64("removed", rowsDeleted))
	}
	return rowsDeleted, nil
}

// Recent returns the newest failures first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]LoadFailure, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, kind, listing, COALESCE(detail, ''), timestamp
		FROM load_failures
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var failures []LoadFailure
	for rows.Next() {
		var f LoadFailure
		if err := rows.Scan(&f.ID, &f.Kind, &f.Listing, &f.Detail, &f.Timestamp); err != nil {
			return nil, err
		}
		failures = append(failures, f)
	}
	return failures, rows.Err()
}

func (j *Journal) Stats(ctx context.Context) (*DiagnosticsStats, error) {
	stats := &DiagnosticsStats{FailuresByKind: map[string]int64{}}

	err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM load_failures").Scan(&stats.TotalFailures)
	if err != nil {
		return nil, err
	}

	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	err = j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM load_failures WHERE timestamp >= ?`, startOfDay).Scan(&stats.FailuresToday)
	if err != nil {
		return nil, err
	}

	rows, err := j.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM load_failures GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var n int64
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		stats.FailuresByKind[kind] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.RecentFailures, err = j.Recent(ctx, 20)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// runCleanup prunes the journal on every tick until ctx is done.
func (j *Journal) runCleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := j.Cleanup(ctx); err != nil {
				j.logger.Warn("error cleaning up diagnostics", zap.Error(err))
			}
		}
	}
}

// setupDiagnosticsRoutes exposes the journal read-only.
func setupDiagnosticsRoutes(r *gin.Engine, j *Journal) {
	group := r.Group("/diagnostics")

	group.GET("/failures", func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		failures, err := j.Recent(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load failures"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"failures": failures})
	})

	group.GET("/stats", func(c *gin.Context) {
		stats, err := j.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})
}
