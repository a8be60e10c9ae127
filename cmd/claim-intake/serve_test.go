package main

import (
	"testing"

	"claim-intake/internal/common/camunda"
	"claim-intake/internal/common/database"
	"claim-intake/internal/intake/store"
	"claim-intake/internal/intake/webhook"

	"github.com/stretchr/testify/assert"
)

func TestReadinessPingers(t *testing.T) {
	rt := &runtime{store: store.NewPostgresStore(nil, nil)}
	assert.ElementsMatch(t, []string{"postgres"}, keys(readinessPingers(rt)))

	rt.redis = &database.RedisClient{}
	rt.camunda = &camunda.Client{}
	pingers := readinessPingers(rt)
	assert.ElementsMatch(t, []string{"postgres", "redis", "camunda"}, keys(pingers))
	assert.Same(t, rt.camunda, pingers["camunda"])
}

func keys(m map[string]webhook.Pinger) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
