package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirp/backend/internal/memgraph"
	"chirp/backend/pkg/config"
)

func TestOpenStore_Memory(t *testing.T) {
	store, closeStore, err := openStore(context.Background(), &config.Config{Store: config.StoreMemory})
	require.NoError(t, err)
	defer closeStore()

	_, ok := store.(*memgraph.Store)
	assert.True(t, ok)
}

func TestOpenStore_Neo4jUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping test that dials the network")
	}
	_, _, err := openStore(context.Background(), &config.Config{
		Store:         config.StoreNeo4j,
		Neo4jURI:      "bolt://127.0.0.1:1",
		Neo4jUser:     "neo4j",
		Neo4jPassword: "password",
	})
	assert.Error(t, err)
}
