package rowcursor

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Debug wraps a stream and writes every value and error it produces to w
// as a JSON line. If w is nil, os.Stdout is used
func Debug(s Stream, w io.Writer) Stream {
	if w == nil {
		w = os.Stdout
	}

	return debugStream{s: s, log: zerolog.New(w)}
}

type debugStream struct {
	s   Stream
	log zerolog.Logger
}

func (d debugStream) Next(ctx context.Context) (Value, error) {
	v, err := d.s.Next(ctx)
	switch {
	case err == Done: //nolint:errorlint
		d.log.Log().Bool("done", true).Send()
	case err != nil:
		d.log.Log().Err(err).Send()
	default:
		d.log.Log().Interface("value", v).Send()
	}

	return v, err
}

func (d debugStream) Close() error {
	return d.s.Close()
}

// WithLogger wraps a stream and logs every pull at debug level
// and every upstream error at error level
func WithLogger(s Stream, logger zerolog.Logger) Stream {
	return &loggedStream{s: s, log: logger}
}

type loggedStream struct {
	s     Stream
	log   zerolog.Logger
	count int
}

func (l *loggedStream) Next(ctx context.Context) (Value, error) {
	v, err := l.s.Next(ctx)
	switch {
	case err == Done: //nolint:errorlint
		l.log.Debug().Int("rows", l.count).Msg("stream exhausted")
	case err != nil:
		l.log.Error().Err(err).Int("position", l.count).Msg("stream error")
		l.count++
	default:
		l.log.Debug().Int("position", l.count).Msg("row read")
		l.count++
	}

	return v, err
}

func (l *loggedStream) Close() error {
	err := l.s.Close()
	if err != nil {
		l.log.Error().Err(err).Msg("closing stream")
	}

	return err
}
