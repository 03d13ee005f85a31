package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNotificationQueues(t *testing.T) {
	queues := GetNotificationQueues()

	require.NotEmpty(t, queues, "queues list should not be empty")

	// Проверка очереди напоминаний
	first := queues[0]
	assert.Equal(t, QueueReminder, first.QueueName)
	assert.Equal(t, RoutingKeyReminder, first.RoutingKey)

	// Проверка уникальности QueueName и RoutingKey
	seenQueues := map[string]bool{}
	seenKeys := map[string]bool{}
	for _, q := range queues {
		assert.Falsef(t, seenQueues[q.QueueName], "duplicate queue name: %s", q.QueueName)
		assert.Falsef(t, seenKeys[q.RoutingKey], "duplicate routing key: %s", q.RoutingKey)
		seenQueues[q.QueueName] = true
		seenKeys[q.RoutingKey] = true
	}
}
