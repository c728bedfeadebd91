package localstore

import (
	"flag"
	"fmt"

	"sealaddr.dev/sealaddr/storage"
	"sealaddr.dev/sealaddr/storage/registry"
)

var (
	flagLocalDir string
)

func init() {
	registry.MustRegister(registry.Backend{
		Name:        "localstore",
		Description: "Local filesystem record store (directory)",
		Usage:       registry.UsageCLI | registry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagLocalDir, "localstore-dir", "", "Local record store directory (for --backend=localstore)")
		},
		Open: func() (storage.RecordStore, func() error, error) {
			if flagLocalDir == "" {
				return nil, nil, fmt.Errorf("missing --localstore-dir")
			}
			store, err := New(flagLocalDir)
			return store, nil, err
		},
	})
}
