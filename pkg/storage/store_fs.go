package storage

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"weldgateway/pkg/utils/fileutil"

	"k8s.io/klog/v2"
)

// FsClient keeps one JSON document per key under a directory.
type FsClient struct {
	storePath string
}

var _ Storage = (*FsClient)(nil)

func NewFsClient(storePath string) (*FsClient, error) {
	if err := os.MkdirAll(storePath, 0711); err != nil {
		return nil, errors.Wrapf(err, "create store %s", storePath)
	}
	absPath, _ := filepath.Abs(storePath)
	klog.V(4).InfoS("Opened store", "path", absPath)
	return &FsClient{storePath: storePath}, nil
}

// Create fails with os.ErrExist when the key is already stored.
func (fc *FsClient) Create(key string, obj interface{}) error {
	f, err := os.OpenFile(filepath.Join(fc.storePath, key), os.O_CREATE|os.O_RDWR|os.O_EXCL, 0640)
	if err != nil {
		klog.V(2).InfoS("Failed to create file", "key", key, "err", err)
		return err
	}
	defer f.Close()

	lock, err := fileutil.NewLock(f)
	if err != nil {
		klog.V(2).InfoS("Failed to lock", "key", key, "err", err)
		return ErrWriteConflict
	}
	defer lock.Release()

	if err = json.NewEncoder(f).Encode(obj); err != nil {
		klog.V(2).InfoS("Failed to encode", "key", key, "err", err)
		return err
	}
	return nil
}

func (fc *FsClient) Get(key string) ([]byte, error) {
	f, err := os.Open(filepath.Join(fc.storePath, key))
	if err != nil {
		if isEphemeralError(err) {
			return nil, ErrWriteConflict
		}
		return nil, err
	}
	defer f.Close()

	lock, err := fileutil.NewLock(f)
	if err != nil {
		return nil, ErrWriteConflict
	}
	defer lock.Release()

	return io.ReadAll(f)
}
