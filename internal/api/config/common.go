package config

// Config 配置主体
type Config struct {
	Server            ServerConfig      `mapstructure:"server"`
	DB                DBConfig          `mapstructure:"database"`
	Redis             RedisConfig       `mapstructure:"redis"`
	JWT               JWTConfig         `mapstructure:"jwt"`
	MinIO             MinIOConfig       `mapstructure:"minio"`
	Elastic           ElasticConfig     `mapstructure:"elastic"`
	Mongo             MongoConfig       `mapstructure:"mongo"`
	Logstash          LogstashConfig    `mapstructure:"logstash"`
	Kafka             KafkaConfig       `mapstructure:"kafka"`
	KafkaEventTopic   KafkaTopicConfig  `mapstructure:"kafka_event_topic"`
	KafkaVehicleTopic KafkaTopicConfig  `mapstructure:"kafka_vehicle_topic"`
	Negotiation       NegotiationConfig `mapstructure:"negotiation"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MainBucket    string `mapstructure:"main_bucket"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	PresignExpire int    `mapstructure:"presign_expire"` // 分钟
}

// ElasticConfig Elastic配置
type ElasticConfig struct {
	Address      string `mapstructure:"address"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	VehicleIndex string `mapstructure:"vehicle_index"`
}

type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

type KafkaTopicConfig struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// NegotiationConfig 议价相关参数
type NegotiationConfig struct {
	SnapshotTTL int    `mapstructure:"snapshot_ttl"` // 秒
	ListTTL     int    `mapstructure:"list_ttl"`     // 秒
	LockTTL     int    `mapstructure:"lock_ttl"`     // 秒
	RelayBatch  int    `mapstructure:"relay_batch"`
	RelaySpec   string `mapstructure:"relay_spec"`
	// RelayMaxAttempts 单个事件投递失败达到该次数后不再自动重试
	RelayMaxAttempts int `mapstructure:"relay_max_attempts"`
}
