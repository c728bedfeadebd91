package storage_test

import (
	"testing"

	"sealaddr.dev/sealaddr/storage"
	"sealaddr.dev/sealaddr/storage/testkit"
)

func TestMemoryConformance(t *testing.T) {
	testkit.RunRecordStoreConformance(t, func(t *testing.T) storage.RecordStore {
		return storage.NewMemory()
	})
}
