package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/cafe/config"
	"github.com/shashiranjanraj/cafe/pkg/logger"
)

var (
	mu       sync.RWMutex
	disks    = map[string]Disk{}
	fallback = "local"
)

// Connect (re)builds the disk table from config.
func Connect(ctx context.Context) {
	local := NewLocalDisk(config.StorageLocalRoot(), config.StorageURL())

	var remote Disk
	if opts := s3OptionsFromConfig(); opts.Bucket != "" {
		d, err := NewS3Disk(ctx, opts)
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			remote = d
		}
	}

	mu.Lock()
	defer mu.Unlock()
	disks[fallback] = local
	if remote != nil {
		disks["s3"] = remote
	}
}

func Register(name string, d Disk) {
	mu.Lock()
	disks[name] = d
	mu.Unlock()
}

func Use(name string) (Disk, error) {
	mu.RLock()
	defer mu.RUnlock()
	if d, ok := disks[name]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("storage: disk %q is not configured", name)
}

// Default returns the STORAGE_DISK disk, or the local disk when that one
// is not registered.
func Default() Disk {
	name := config.StorageDefault()
	if d, err := Use(name); err == nil {
		return d
	}
	if d, err := Use(fallback); err == nil {
		if name != fallback {
			logger.Warn("storage: disk unavailable, using local", "disk", name)
		}
		return d
	}
	Connect(context.Background())
	d, _ := Use(fallback)
	return d
}
