package observability

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"guest_beer/internal/domain"
)

type instrumentedSource struct {
	next domain.MenuSource
}

// InstrumentSource counts and logs every load of src.
func InstrumentSource(src domain.MenuSource) domain.MenuSource {
	return &instrumentedSource{next: src}
}

func (s *instrumentedSource) Name() string { return s.next.Name() }

func (s *instrumentedSource) Load(ctx context.Context) (domain.Batch, error) {
	start := time.Now()
	b, err := s.next.Load(ctx)
	ObserveMenuLoad(s.next.Name(), len(b.Records), time.Since(start), err)
	if err != nil {
		log.Error().Err(err).Str("source", s.next.Name()).Str("kind", ErrorKind(err)).Msg("menu load failed")
		return b, err
	}
	log.Debug().
		Str("source", s.next.Name()).
		Int("records", len(b.Records)).
		Dur("duration", time.Since(start)).
		Msg("menu loaded")
	return b, nil
}
