package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mubench-review/internal/logger"
	"mubench-review/internal/services"
)

var hitsCmd = &cobra.Command{
	Use:   "hits <tabela>",
	Short: "Imprime o índice de potential hits da tabela em JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProcessor(cmd, func(ctx context.Context, _ *environment, p *services.DataProcessor) error {
			return printHits(ctx, cmd.OutOrStdout(), p, args[0])
		})
	},
}

var datasetsCmd = &cobra.Command{
	Use:   "datasets [prefixo]",
	Short: "Lista os datasets das tabelas com o prefixo",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProcessor(cmd, func(ctx context.Context, env *environment, p *services.DataProcessor) error {
			names, err := p.GetDatasets(ctx, prefixArg(args, env))
			if err != nil {
				return err
			}
			return printLines(cmd.OutOrStdout(), names)
		})
	},
}

var detectorsCmd = &cobra.Command{
	Use:   "detectors [prefixo]",
	Short: "Lista os detectores das tabelas com o prefixo",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProcessor(cmd, func(ctx context.Context, env *environment, p *services.DataProcessor) error {
			names, err := p.GetDetectors(ctx, prefixArg(args, env))
			if err != nil {
				return err
			}
			return printLines(cmd.OutOrStdout(), names)
		})
	},
}

// prefixArg usa TABLE_PREFIX quando o prefixo não é informado.
func prefixArg(args []string, env *environment) string {
	if len(args) > 0 {
		return args[0]
	}
	return env.cfg.TablePrefix
}

func withProcessor(cmd *cobra.Command, fn func(ctx context.Context, env *environment, p *services.DataProcessor) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	env, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer env.close()
	defer logger.GetLogger().Sync()
	return fn(ctx, env, services.NewDataProcessor(env.store))
}

func printHits(ctx context.Context, w io.Writer, p *services.DataProcessor, table string) error {
	index, err := p.GetPotentialHitsIndex(ctx, table)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(index)
}

func printLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
