package rabbitmq

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Ключи маршрутизации уведомлений в exchange "notifications".
const (
	RoutingKeyReminder     = "reminder"
	RoutingKeyAccess       = "access"
	RoutingKeyWelcome      = "welcome"
	RoutingKeySubscription = "subscription"
	RoutingKeyOrder        = "order"
)

// Имена очередей уведомлений, по одной на тип письма.
const (
	QueueReminder     = "notification.reminder"
	QueueAccess       = "notification.access"
	QueueWelcome      = "notification.welcome"
	QueueSubscription = "notification.subscription"
	QueueOrder        = "notification.order"
)

func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueReminder, RoutingKey: RoutingKeyReminder},
		{QueueName: QueueAccess, RoutingKey: RoutingKeyAccess},
		{QueueName: QueueWelcome, RoutingKey: RoutingKeyWelcome},
		{QueueName: QueueSubscription, RoutingKey: RoutingKeySubscription},
		{QueueName: QueueOrder, RoutingKey: RoutingKeyOrder},
	}
}
