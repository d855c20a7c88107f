package dsl

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shaiso/rmqlink/internal/mq"
	"github.com/shaiso/rmqlink/internal/registry"
	"github.com/shaiso/rmqlink/internal/telemetry"
)

// Значения по умолчанию.
const (
	DefaultMinFrames = 4096
	DefaultFrames    = 131072
	DefaultHeartbeat = 0
	DefaultRetries   = 0
)

// Options — параметры разбора.
type Options struct {
	MinFrames        int
	DefaultFrames    int
	DefaultHeartbeat int
	DefaultRetries   int

	// ParseAddress разбирает значение uri. По умолчанию mq.ParseAddress.
	ParseAddress mq.AddressParser
}

// DefaultOptions возвращает параметры по умолчанию.
func DefaultOptions() Options {
	return Options{
		MinFrames:        DefaultMinFrames,
		DefaultFrames:    DefaultFrames,
		DefaultHeartbeat: DefaultHeartbeat,
		DefaultRetries:   DefaultRetries,
		ParseAddress:     mq.ParseAddress,
	}
}

// Store — реестр, в который парсер добавляет endpoint'ы.
type Store interface {
	Find(id string) *mq.Endpoint
	Insert(ep *mq.Endpoint) error
}

// Parser разбирает определения и регистрирует endpoint'ы.
type Parser struct {
	store  Store
	opts   Options
	logger *slog.Logger
}

// NewParser создаёт Parser. Нулевые MinFrames, DefaultFrames и ParseAddress
// заменяются значениями из DefaultOptions.
func NewParser(store Store, opts Options, logger *slog.Logger) *Parser {
	defaults := DefaultOptions()
	if opts.MinFrames <= 0 {
		opts.MinFrames = defaults.MinFrames
	}
	if opts.DefaultFrames <= 0 {
		opts.DefaultFrames = defaults.DefaultFrames
	}
	if opts.DefaultFrames < opts.MinFrames {
		opts.DefaultFrames = opts.MinFrames
	}
	if opts.ParseAddress == nil {
		opts.ParseAddress = defaults.ParseAddress
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		store:  store,
		opts:   opts,
		logger: logger,
	}
}

// Parse разбирает определение, проверяет его и добавляет endpoint в реестр.
// Новый endpoint находится в состоянии DISCONNECTED.
func (p *Parser) Parse(definition string) (*mq.Endpoint, error) {
	cid, rest, err := splitConnectionID(definition)
	if err != nil {
		return nil, err
	}

	// Дубликат проверяется до разбора параметров.
	if p.store.Find(cid) != nil {
		return nil, newDefinitionError(cid, "",
			fmt.Sprintf("connection id %s already defined", cid), registry.ErrDuplicateConnectionID)
	}

	logger := telemetry.WithConnectionID(p.logger, cid)

	s := &scan{
		cid:       cid,
		src:       rest,
		logger:    logger,
		opts:      p.opts,
		frames:    p.opts.DefaultFrames,
		heartbeat: p.opts.DefaultHeartbeat,
		retries:   p.opts.DefaultRetries,
	}
	if err := s.run(); err != nil {
		return nil, err
	}

	rawURI, ok := s.uri()
	if !ok {
		return nil, newDefinitionError(cid, "uri", "cannot find an uri", ErrMissingURI)
	}

	addr, err := p.opts.ParseAddress(rawURI)
	if err != nil {
		return nil, newDefinitionError(cid, "uri",
			fmt.Sprintf("cannot parse rabbitmq uri %q: %v", rawURI, err), ErrInvalidURI)
	}
	if addr.Secure {
		return nil, newDefinitionError(cid, "uri",
			"secure (amqps) connections are not supported", ErrUnsupportedSecureTransport)
	}

	ep := &mq.Endpoint{
		ID:           cid,
		URI:          addr,
		Exchange:     s.exchange,
		Flags:        s.flags,
		MaxFrameSize: s.frames,
		Heartbeat:    s.heartbeat,
		Retries:      s.retries,
	}

	if err := p.store.Insert(ep); err != nil {
		return nil, newDefinitionError(cid, "", err.Error(), err)
	}

	logger.Debug("new amqp endpoint",
		"host", addr.Host,
		"port", addr.Port,
		"vhost", addr.VHost,
	)
	return ep, nil
}

// splitConnectionID выделяет "[cid]" в начале определения.
func splitConnectionID(def string) (string, string, error) {
	s := strings.TrimLeft(def, wsChars)
	if !strings.HasPrefix(s, "[") {
		return "", "", newDefinitionError("", def,
			fmt.Sprintf("cannot find connection id start: %q", s), ErrConfigSyntax)
	}

	end := strings.IndexByte(s, ']')
	if end < 0 {
		return "", "", newDefinitionError("", def,
			fmt.Sprintf("cannot find connection id end: %q", s), ErrConfigSyntax)
	}

	cid := strings.TrimSpace(s[1:end])
	if cid == "" {
		return "", "", newDefinitionError("", def, "empty connection id", ErrConfigSyntax)
	}
	return cid, s[end+1:], nil
}

const wsChars = " \t\r\n"

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// scan — состояние сканера параметров одного определения.
type scan struct {
	cid    string
	src    string
	logger *slog.Logger
	opts   Options

	// uri задаётся как диапазон src: конец сдвигается, когда
	// продолжение uri прерывается ключевым словом.
	hasURI     bool
	uriPending bool
	uriStart   int
	uriEnd     int

	exchange  string
	flags     mq.Flags
	frames    int
	heartbeat int
	retries   int
}

func (s *scan) run() error {
	src := s.src

	for i := 0; i < len(src); i++ {
		if isSpace(src[i]) {
			continue
		}

		start := i
		kw, known := matchKeyword(src[i:])
		if known {
			if s.uriPending {
				s.uriEnd = start
				s.uriPending = false
			}

			i += len(kw.name)
			if kw.hasValue {
				for i < len(src) && isSpace(src[i]) {
					i++
				}
				if i >= len(src) || src[i] != '=' {
					return newDefinitionError(s.cid, kw.name,
						fmt.Sprintf("cannot find '=' after %s: %q", kw.name, src[start:]), ErrConfigSyntax)
				}
				i++
			}
		}

		valueStart := i
		end := strings.IndexByte(src[i:], ';')
		if end < 0 {
			end = len(src)
		} else {
			end += i
		}
		value := strings.TrimSpace(src[valueStart:end])

		if !known {
			if !s.uriPending {
				return newDefinitionError(s.cid, value,
					fmt.Sprintf("unknown parameter: %q", strings.TrimSpace(src[start:end])), ErrUnknownParameter)
			}
			// Продолжение uri.
			i = end
			continue
		}

		if err := s.apply(kw, value, valueStart); err != nil {
			return err
		}
		i = end
	}

	return nil
}

// apply применяет параметр kw со значением value.
func (s *scan) apply(kw keyword, value string, valueStart int) error {
	switch kw.kind {
	case paramURI:
		s.hasURI = true
		s.uriPending = true
		s.uriStart = valueStart
		s.uriEnd = len(s.src)

	case paramFrames:
		n, err := s.atoi(kw.name, value)
		if err != nil {
			return err
		}
		if n < s.opts.MinFrames {
			s.logger.Warn("number of frames is less than expected, using minimum",
				"frames", n, "min_frames", s.opts.MinFrames)
			n = s.opts.MinFrames
		}
		s.frames = n

	case paramHeartbeat:
		n, err := s.atoi(kw.name, value)
		if err != nil {
			return err
		}
		if n < 0 {
			s.logger.Warn("invalid number of heartbeat seconds, using default",
				"heartbeat", n, "default", s.opts.DefaultHeartbeat)
			n = s.opts.DefaultHeartbeat
		}
		s.heartbeat = n

	case paramRetries:
		n, err := s.atoi(kw.name, value)
		if err != nil {
			return err
		}
		if n < 0 {
			s.logger.Warn("invalid number of retries, using default",
				"retries", n, "default", s.opts.DefaultRetries)
			n = s.opts.DefaultRetries
		}
		s.retries = n

	case paramExchange:
		s.exchange = value

	case paramFlag:
		if value != "" {
			return newDefinitionError(s.cid, kw.name,
				fmt.Sprintf("flag %s does not take a value: %q", kw.name, value), ErrConfigSyntax)
		}
		s.flags |= kw.flag
	}

	return nil
}

func (s *scan) atoi(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, newDefinitionError(s.cid, name,
			fmt.Sprintf("%s must be a number, not %q", name, value), ErrConfigSyntax)
	}
	return n, nil
}

// uri возвращает итоговое значение uri: без пробелов по краям
// и без одного завершающего ';'.
func (s *scan) uri() (string, bool) {
	if !s.hasURI {
		return "", false
	}

	u := strings.TrimSpace(s.src[s.uriStart:s.uriEnd])
	u = strings.TrimSuffix(u, ";")
	return strings.TrimSpace(u), true
}
