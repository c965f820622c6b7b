package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrInvalidDriver = errors.New("DB_DRIVER deve ser postgres ou sqlite")
	ErrMissingDBPath = errors.New("DB_PATH é obrigatório com sqlite")
	ErrMissingPGHost = errors.New("PG_HOST é obrigatório com postgres")
	ErrMissingSecret = errors.New("DB_SECRET_ID é obrigatório com ENABLE_SECRETS_MANAGER")
)

type Config struct {
	DBDriver      string        `mapstructure:"db_driver"`    // postgres ou sqlite.
	DBPath        string        `mapstructure:"db_path"`      // Arquivo SQLite.
	PGHost        string        `mapstructure:"pg_host"`      // Host do banco.
	PGPort        string        `mapstructure:"pg_port"`      // Porta do banco.
	PGName        string        `mapstructure:"pg_name"`      // Nome do banco.
	PGUser        string        `mapstructure:"pg_user"`      // Usuário.
	PGPassword    string        `mapstructure:"pg_password"`  // Senha.
	PGSSLMode     string        `mapstructure:"pg_sslmode"`   // sslmode do lib/pq.
	HTTPAddr      string        `mapstructure:"http_addr"`    // Endereço do servidor HTTP.
	ReadTimeout   time.Duration `mapstructure:"read_timeout"` // Timeout de leitura HTTP.
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	LogLevel      string        `mapstructure:"log_level"`
	LogPath       string        `mapstructure:"log_path"`
	Env           string        `mapstructure:"app_env"`
	TablePrefix   string        `mapstructure:"table_prefix"`           // Prefixo padrão das tabelas de resultados.
	EnableSecrets bool          `mapstructure:"enable_secrets_manager"` // Habilita AWS Secrets Manager para a senha do banco.
	DBSecretID    string        `mapstructure:"db_secret_id"`
	AWSRegion     string        `mapstructure:"aws_region"`
}

var keys = []string{
	"db_driver", "db_path",
	"pg_host", "pg_port", "pg_name", "pg_user", "pg_password", "pg_sslmode",
	"http_addr", "read_timeout", "write_timeout",
	"log_level", "log_path", "app_env", "table_prefix",
	"enable_secrets_manager", "db_secret_id", "aws_region",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_driver", "postgres")
	v.SetDefault("pg_port", "5432")
	v.SetDefault("pg_sslmode", "disable")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("read_timeout", 30*time.Second)
	v.SetDefault("write_timeout", 60*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_path", "logs/app.log")
	v.SetDefault("app_env", "production")
	v.SetDefault("table_prefix", "ex1")
	v.SetDefault("enable_secrets_manager", false)
}

// Load lê o arquivo YAML em path (opcional) e aplica as variáveis de
// ambiente por cima. Os nomes das variáveis são as chaves em maiúsculas,
// por exemplo PG_HOST e ENABLE_SECRETS_MANAGER.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	for _, key := range keys {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("erro ao ler configuração %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("erro ao decodificar configuração: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			return ErrMissingDBPath
		}
	case "postgres":
		if c.PGHost == "" {
			return ErrMissingPGHost
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDriver, c.DBDriver)
	}
	if c.EnableSecrets && c.DBSecretID == "" {
		return ErrMissingSecret
	}
	return nil
}

func (c Config) PostgresConnString() string {
	// Exemplo: "host=localhost port=5432 dbname=mydb user=myuser password=mypass sslmode=disable"
	return "host=" + c.PGHost + " port=" + c.PGPort + " dbname=" + c.PGName + " user=" + c.PGUser + " password=" + c.PGPassword + " sslmode=" + c.PGSSLMode
}

// DSN devolve a string de conexão do driver configurado.
func (c Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.DBPath
	}
	return c.PostgresConnString()
}
