package models

// PotentialHit é uma linha de uma tabela de resultados de detector.
// As linhas chegam ordenadas por projeto e depois por versão.
type PotentialHit struct {
	Project string `json:"project"`
	Version string `json:"version"`
	Misuse  string `json:"misuse"`
}

// Stats é o resumo pré-calculado de uma execução de detector para um par
// projeto/versão. A chave segue o formato tabela_projeto_versao.
type Stats struct {
	ID               string  `json:"id"`
	Result           string  `json:"result"`  // success, error, timeout
	Runtime          float64 `json:"runtime"` // segundos
	NumberOfFindings int     `json:"number_of_findings"`
}

// ProjectSummary agrupa as versões de um projeto, as estatísticas de cada
// versão (Stats[i] descreve Versions[i]) e os misuses distintos por versão.
type ProjectSummary[S any] struct {
	Project  string              `json:"project"`
	Versions []string            `json:"versions"`
	Stats    []S                 `json:"stats"`
	Misuse   map[string][]string `json:"misuse"`
}

// ProjectIndex é o resumo servido pela API, com estatísticas do banco.
type ProjectIndex = ProjectSummary[Stats]
