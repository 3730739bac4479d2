package usecase

import "errors"

var (
	ErrClusterNotFound = errors.New("cluster not found")
	ErrInvalidCluster  = errors.New("cluster name is required")
	ErrMissingSignalID = errors.New("signal_id is required")
)
