package ports

import "github.com/compolabs/spark-miden-v1/internal/core/domain"

// RepoManager holds the repositories of the local client state.
type RepoManager interface {
	OrderRepository() domain.OrderRepository
	FillRepository() domain.FillRepository
	Close()
}
