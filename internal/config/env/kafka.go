package env

import "run_the_numbers/internal/config"

const (
	kafkaBrokersEnvName    = "KAFKA_BROKERS"
	kafkaHandsTopicEnvName = "KAFKA_HANDS_TOPIC"
)

type kafkaConfig struct {
	brokers    []string
	handsTopic string
}

func NewKafkaConfig() config.KafkaConfig {
	return &kafkaConfig{
		brokers:    listEnv(kafkaBrokersEnvName),
		handsTopic: stringEnv(kafkaHandsTopicEnvName, "rtn.hands.settled"),
	}
}

func (cfg *kafkaConfig) Brokers() []string { return cfg.brokers }

func (cfg *kafkaConfig) HandsTopic() string { return cfg.handsTopic }
