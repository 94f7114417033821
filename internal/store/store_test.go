package store_test

import (
	"github.com/sirupsen/logrus"

	"github.com/MoonrakerAI/coliving-backend/internal/kv"
	"github.com/MoonrakerAI/coliving-backend/internal/store"
)

// newTestBase returns a Base backed by the in-memory KV store.
func newTestBase() (store.Base, *kv.MemoryStore) {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	mem := kv.NewMemoryStore()

	return store.Base{KV: mem, Log: log}, mem
}
