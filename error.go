package match

import "errors"

var (
	ErrInvalidOrder = errors.New("the order violates the engine contract")
	ErrInvalidParam = errors.New("the param is invalid")
	ErrTimeout      = errors.New("timeout")
	ErrShutdown     = errors.New("market is shutting down")
	ErrSequenceGap  = errors.New("book log sequence gap")
)
