package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mubench-review/config"
	"mubench-review/internal/db"
	"mubench-review/internal/logger"
	"mubench-review/internal/secrets"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "mubench-review",
	Short: "Backend de revisão dos resultados de detectores do MUBench",
	Long: `Backend de revisão dos resultados de detectores do MUBench.

Lê as tabelas de potential hits geradas pelos detectores, agrupa as linhas
por projeto e versão e anexa as estatísticas de cada execução.`,
	SilenceUsage: true,
}

// Execute roda o comando raiz e encerra o processo em caso de erro.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Arquivo YAML de configuração (variáveis de ambiente têm precedência)")
	rootCmd.AddCommand(serveCmd, hitsCmd, datasetsCmd, detectorsCmd)
}

// environment agrupa o que os subcomandos precisam depois do bootstrap.
type environment struct {
	cfg   config.Config
	store *db.SQLStore
	close func() error
}

// bootstrap carrega a configuração, inicia o logger, resolve a senha do
// banco e abre a conexão.
func bootstrap(ctx context.Context) (*environment, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(logger.Options{
		AppName: "MubenchReview",
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Path:    cfg.LogPath,
	}); err != nil {
		logger.Log.Warnf("Nível de log inválido %q, usando debug: %v", cfg.LogLevel, err)
	}

	var sm secrets.SecretsManager
	if cfg.EnableSecrets {
		fetcher, err := secrets.NewAWSSecretsManager(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		sm = fetcher
	} else {
		sm = &secrets.DefaultSecretsManager{}
	}
	if cfg.PGPassword, err = dbPassword(ctx, cfg, sm); err != nil {
		return nil, err
	}

	database := db.NewDatabase()
	store, err := database.Connect(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("erro ao conectar ao banco: %w", err)
	}
	logger.Log.Infow("Banco conectado", "driver", cfg.DBDriver)

	return &environment{cfg: cfg, store: store, close: database.Close}, nil
}

// pgPasswordEnv é o segredo lido do ambiente quando o Secrets Manager está desligado.
const pgPasswordEnv = "PG_PASSWORD"

// dbPassword resolve a senha do Postgres pelo SecretsManager. Sem o AWS
// Secrets Manager, a ausência de PG_PASSWORD mantém a senha do arquivo de
// configuração.
func dbPassword(ctx context.Context, cfg config.Config, sm secrets.SecretsManager) (string, error) {
	if cfg.DBDriver != "postgres" {
		return cfg.PGPassword, nil
	}
	secretID := pgPasswordEnv
	if cfg.EnableSecrets {
		secretID = cfg.DBSecretID
	}
	password, err := sm.GetSecret(ctx, secretID)
	if err != nil {
		if cfg.EnableSecrets {
			return "", err
		}
		logger.Log.Debugf("Senha do banco fora do ambiente, usando pg_password da configuração: %v", err)
		return cfg.PGPassword, nil
	}
	return password, nil
}
