// Package filesource serves a menu payload stored next to the page.
package filesource

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"

	"guest_beer/internal/domain"
	"guest_beer/internal/ingest"
)

const SourceFile = "file"

type Source struct {
	path   string
	parser ingest.Parser
}

func New(path string, p ingest.Parser) *Source {
	if p == nil {
		p = ingest.AutoParser{}
	}
	return &Source{path: path, parser: p}
}

func (s *Source) Name() string { return SourceFile }

// Load reads and parses the payload. A missing or unparsable payload is
// logged and served as an empty menu; it never fails the request.
func (s *Source) Load(ctx context.Context) (domain.Batch, error) {
	empty := domain.Batch{Source: SourceFile}
	if err := ctx.Err(); err != nil {
		return domain.Batch{}, err
	}
	if s.path == "" {
		return empty, nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", s.path).Msg("menu data file not found")
		} else {
			log.Error().Err(err).Str("path", s.path).Msg("read menu data failed")
		}
		return empty, nil
	}
	b, err := s.parser.Parse(data, SourceFile)
	if err != nil {
		log.Error().Err(err).Str("path", s.path).Str("shape", s.parser.Shape()).Msg("failed to parse guest beer data")
		return empty, nil
	}
	return b, nil
}
