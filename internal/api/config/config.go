package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig 从 ./configs/config.yaml 加载配置，环境变量可覆盖同名键
func LoadConfig() (*Config, error) {
	return LoadConfigFrom("./configs")
}

// LoadConfigFrom 从指定目录加载配置
func LoadConfigFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.max_open", 50)
	v.SetDefault("database.max_lifetime", 30)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("jwt.issuer", "Motorway")
	v.SetDefault("minio.presign_expire", 60)
	v.SetDefault("elastic.vehicle_index", "vehicles")
	v.SetDefault("mongo.database", "motorway")
	v.SetDefault("negotiation.snapshot_ttl", 600)
	v.SetDefault("negotiation.list_ttl", 300)
	v.SetDefault("negotiation.lock_ttl", 10)
	v.SetDefault("negotiation.relay_batch", 100)
	v.SetDefault("negotiation.relay_spec", "@every 5s")
	v.SetDefault("negotiation.relay_max_attempts", 10)
}
