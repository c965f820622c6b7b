package services

import (
	"context"
	"errors"
	"time"

	"mubench-review/internal/aggregate"
	"mubench-review/internal/db"
	"mubench-review/internal/logger"
	"mubench-review/models"
)

const (
	datasetSegment  = 1
	detectorSegment = 2
)

// DataProcessor monta as respostas do backend a partir do DataStore.
type DataProcessor struct {
	Store db.DataStore
}

func NewDataProcessor(store db.DataStore) *DataProcessor {
	return &DataProcessor{Store: store}
}

// GetPotentialHitsIndex agrupa os potential hits da tabela por projeto e
// versão, anexando as estatísticas de cada versão.
// Versões sem linha em stats recebem estatísticas vazias com o ID da chave.
func (p *DataProcessor) GetPotentialHitsIndex(ctx context.Context, table string) ([]models.ProjectIndex, error) {
	start := time.Now()
	defer logger.Trace("GetPotentialHitsIndex", start)

	hits, err := p.Store.GetPotentialHits(ctx, table)
	if err != nil {
		logger.Log.Errorf("DataProcessor: erro ao buscar potential hits de %s: %v", table, err)
		return nil, err
	}

	lookup := func(ctx context.Context, project, version string) (models.Stats, error) {
		key := db.StatsKey(table, project, version)
		st, err := p.Store.GetStats(ctx, key)
		if errors.Is(err, db.ErrStatsNotFound) {
			logger.Log.Warnf("DataProcessor: stats ausentes para %s", key)
			return models.Stats{ID: key}, nil
		}
		return st, err
	}

	index, err := aggregate.Aggregate(ctx, hits, lookup)
	if err != nil {
		logger.Log.Errorf("DataProcessor: erro ao agregar %s: %v", table, err)
		return nil, err
	}
	logger.Log.Debugf("DataProcessor: %d linhas de %s agrupadas em %d projetos", len(hits), table, len(index))
	return index, nil
}

func (p *DataProcessor) GetDatasets(ctx context.Context, prefix string) ([]string, error) {
	return p.GetPrefixTable(ctx, prefix, datasetSegment)
}

func (p *DataProcessor) GetDetectors(ctx context.Context, prefix string) ([]string, error) {
	return p.GetPrefixTable(ctx, prefix, detectorSegment)
}

// GetPrefixTable devolve o segmento segment dos nomes de tabela que começam com prefix.
func (p *DataProcessor) GetPrefixTable(ctx context.Context, prefix string, segment int) ([]string, error) {
	defer logger.TraceAuto()()

	tables, err := p.Store.GetTables(ctx)
	if err != nil {
		logger.Log.Errorf("DataProcessor: erro ao listar tabelas: %v", err)
		return nil, err
	}
	return aggregate.FilterByPrefix(tables, prefix, segment), nil
}
