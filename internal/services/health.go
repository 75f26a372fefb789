package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"educhain/internal/database"
)

const healthPingTimeout = 2 * time.Second

// HealthResult is the body of the health endpoint
type HealthResult struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
}

// Healthy reports whether every dependency answered.
func (r *HealthResult) Healthy() bool {
	return r.Status == "healthy"
}

// HealthService implements the health service
type HealthService struct {
	db      *gorm.DB
	service string
}

// NewHealthService creates a new health service
func NewHealthService(db *gorm.DB, service string) *HealthService {
	return &HealthService{db: db, service: service}
}

// Check pings the database and reports the result.
func (s *HealthService) Check(ctx context.Context) *HealthResult {
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()

	res := &HealthResult{Status: "healthy", Service: s.service, Database: "ok"}
	if err := database.Ping(ctx, s.db); err != nil {
		res.Status = "unhealthy"
		res.Database = err.Error()
	}
	return res
}
