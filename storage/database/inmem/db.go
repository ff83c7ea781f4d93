package inmemdb

import (
	"sync"
	"time"

	"github.com/neurolearn/neuro/core/emotion"
)

type (
	DB struct {
		kv      *kvTable
		emotion *emotionTable
	}

	kvEntry struct {
		value     string
		expiresAt time.Time // zero: never
	}

	kvTable struct {
		table map[string]kvEntry
		mutex sync.RWMutex
	}

	emotionTable struct {
		table []emotion.Entry // insertion order
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		kv:      &kvTable{table: make(map[string]kvEntry)},
		emotion: &emotionTable{table: make([]emotion.Entry, 0)},
	}
}
