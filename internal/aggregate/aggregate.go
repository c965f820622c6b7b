// Package aggregate agrupa linhas de potential hits em resumos por projeto,
// versão e misuse.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"mubench-review/models"
)

// ErrMissingVersionContext indica uma linha que não pode ser associada à
// versão em andamento: a versão já foi fechada dentro do projeto atual ou o
// projeto já foi finalizado. Só acontece com entrada fora de ordem.
var ErrMissingVersionContext = errors.New("misuse sem contexto de versão")

// StatsLookup busca as estatísticas de um par projeto/versão.
type StatsLookup[S any] func(ctx context.Context, project, version string) (S, error)

// Aggregate percorre as linhas uma única vez e devolve um resumo por
// projeto, na ordem em que os projetos aparecem. O lookup é chamado
// exatamente uma vez por versão nova, no momento em que ela é vista.
//
// Erros do lookup são devolvidos sem alteração. Qualquer erro aborta a
// agregação e nenhum resultado parcial é devolvido.
func Aggregate[S any](ctx context.Context, rows []models.PotentialHit, lookup StatsLookup[S]) ([]models.ProjectSummary[S], error) {
	out := make([]models.ProjectSummary[S], 0)

	var current *models.ProjectSummary[S]
	var lastVersion string
	finished := make(map[string]struct{})

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if current == nil || current.Project != row.Project {
			if _, seen := finished[row.Project]; seen {
				return nil, fmt.Errorf("projeto %q reaparece após ser finalizado: %w", row.Project, ErrMissingVersionContext)
			}
			if current != nil {
				finished[current.Project] = struct{}{}
				out = append(out, *current)
			}
			current = &models.ProjectSummary[S]{
				Project:  row.Project,
				Versions: []string{},
				Stats:    []S{},
				Misuse:   map[string][]string{},
			}
		}

		if len(current.Versions) == 0 || row.Version != lastVersion {
			if _, seen := current.Misuse[row.Version]; seen {
				return nil, fmt.Errorf("versão %q do projeto %q reaparece fora de ordem: %w", row.Version, row.Project, ErrMissingVersionContext)
			}
			stats, err := lookup(ctx, row.Project, row.Version)
			if err != nil {
				return nil, err
			}
			current.Versions = append(current.Versions, row.Version)
			current.Stats = append(current.Stats, stats)
			current.Misuse[row.Version] = []string{}
			lastVersion = row.Version
		}

		misuses := current.Misuse[lastVersion]
		if !slices.Contains(misuses, row.Misuse) {
			current.Misuse[lastVersion] = append(misuses, row.Misuse)
		}
	}

	if current != nil {
		out = append(out, *current)
	}
	return out, nil
}
