package repository

import (
	"context"
	"fmt"

	"github.com/WarmUp-AI/WebDev/internal/models"
)

// CountStats собирает сводную статистику для админской панели одним запросом.
func (s *Storage) CountStats(ctx context.Context) (*models.Stats, error) {
	const op = "storage.CountStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
			      (SELECT COUNT(*) FROM users WHERE role = 'client'),
			      (SELECT COUNT(*) FROM orders),
			      (SELECT COUNT(*) FROM orders WHERE status = 'paid'),
			      (SELECT COALESCE(SUM(amount), 0) FROM orders WHERE status = 'paid'),
			      (SELECT COUNT(*) FROM accounts WHERE status = 'warming'),
			      (SELECT COUNT(*) FROM accounts WHERE status = 'completed')`
	var stats models.Stats
	var revenueMinor int64
	row := s.DB.QueryRowContext(ctx, query)
	if err := row.Scan(&stats.TotalUsers, &stats.TotalOrders, &stats.PaidOrders,
		&revenueMinor, &stats.ActiveAccounts, &stats.CompletedAccounts); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	stats.TotalRevenue = float64(revenueMinor) / 100
	return &stats, nil
}
