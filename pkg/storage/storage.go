package storage

import "errors"

// resources
const (
	Gateway = "gateway"
)

var ErrWriteConflict = errors.New("write conflict")

type Getter interface {
	Get(key string) ([]byte, error)
}

type Creater interface {
	Create(key string, obj interface{}) error
}

type Storage interface {
	Getter
	Creater
}
