package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// ZerologSink is the default Sink implementation, writing structured
// events through github.com/rs/zerolog.
type ZerologSink struct {
	logger zerolog.Logger
}

// NewZerologSink builds a sink writing to w (os.Stderr if nil) at level.
// level follows zerolog's string parsing ("debug", "info", "warn", "error").
func NewZerologSink(w io.Writer, level string) (*ZerologSink, error) {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &ZerologSink{logger: logger}, nil
}

func withFields(e *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		e = e.Interface(f.Key, f.Value)
	}
	return e
}

func (s *ZerologSink) Debug(msg string, fields ...Field) {
	withFields(s.logger.Debug(), fields).Msg(msg)
}

func (s *ZerologSink) Info(msg string, fields ...Field) {
	withFields(s.logger.Info(), fields).Msg(msg)
}

func (s *ZerologSink) Warn(msg string, fields ...Field) {
	withFields(s.logger.Warn(), fields).Msg(msg)
}

func (s *ZerologSink) Error(msg string, err error, fields ...Field) {
	withFields(s.logger.Error().Err(err), fields).Msg(msg)
}
