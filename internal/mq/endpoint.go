package mq

import (
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/rmqlink/internal/telemetry"
)

// URI — разобранный адрес брокера.
type URI struct {
	Host     string
	Port     int
	VHost    string
	User     string
	Password string

	// Secure — адрес требует TLS (схема amqps).
	Secure bool
}

// Address возвращает host:port.
func (u URI) Address() string {
	return net.JoinHostPort(u.Host, strconv.Itoa(u.Port))
}

// Redacted возвращает адрес без пароля, пригодный для логов.
func (u URI) Redacted() string {
	scheme := "amqp"
	if u.Secure {
		scheme = "amqps"
	}
	vhost := u.VHost
	if vhost != "/" {
		vhost = "/" + url.PathEscape(vhost)
	}
	return scheme + "://" + u.User + ":***@" + u.Address() + vhost
}

// Flags — флаги поведения при публикации.
type Flags uint8

const (
	FlagImmediate Flags = 1 << iota
	FlagMandatory
	FlagNonPersistent
)

// Has проверяет, установлен ли флаг.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// String возвращает флаги через запятую в порядке объявления.
func (f Flags) String() string {
	var names []string
	if f.Has(FlagImmediate) {
		names = append(names, "immediate")
	}
	if f.Has(FlagMandatory) {
		names = append(names, "mandatory")
	}
	if f.Has(FlagNonPersistent) {
		names = append(names, "non-persistent")
	}
	return strings.Join(names, ",")
}

// Endpoint — описание одного брокера и его соединения.
//
// Поля конфигурации заполняются один раз при разборе определения
// и дальше не меняются. Состояние и соединение меняет только Connector.
type Endpoint struct {
	// ID — уникальный идентификатор соединения (connection id).
	ID string

	URI      URI
	Exchange string
	Flags    Flags

	MaxFrameSize int
	Heartbeat    int // секунды

	// Retries не используется Connector'ом: значение предназначено
	// для внешнего планировщика переподключений.
	Retries int

	// mu сериализует переходы состояний: одновременно выполняется
	// не больше одного Connect/Close для endpoint.
	mu   sync.Mutex
	conn Conn

	// statusMu защищает поля, которые читаются снаружи во время перехода.
	statusMu  sync.RWMutex
	state     State
	sessionID string
}

// State возвращает текущее состояние endpoint.
// Не блокируется на выполняющемся Connect.
func (e *Endpoint) State() State {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.state
}

// SessionID возвращает идентификатор текущего соединения (пусто, если не READY).
func (e *Endpoint) SessionID() string {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.sessionID
}

func (e *Endpoint) setState(s State) {
	e.statusMu.Lock()
	e.state = s
	if s != StateReady {
		e.sessionID = ""
	}
	e.statusMu.Unlock()

	telemetry.SetEndpointState(e.ID, int(s))
}

func (e *Endpoint) setSession(id string) {
	e.statusMu.Lock()
	e.sessionID = id
	e.statusMu.Unlock()
}

// EndpointInfo — снимок endpoint для вывода в CLI и API.
type EndpointInfo struct {
	ID           string `json:"connection_id"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	VHost        string `json:"vhost"`
	User         string `json:"user"`
	Exchange     string `json:"exchange"`
	Flags        string `json:"flags,omitempty"`
	MaxFrameSize int    `json:"max_frame_size"`
	Heartbeat    int    `json:"heartbeat"`
	Retries      int    `json:"retries"`
	State        string `json:"state"`
	SessionID    string `json:"session_id,omitempty"`
}

// Info возвращает снимок endpoint.
func (e *Endpoint) Info() EndpointInfo {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()

	return EndpointInfo{
		ID:           e.ID,
		Host:         e.URI.Host,
		Port:         e.URI.Port,
		VHost:        e.URI.VHost,
		User:         e.URI.User,
		Exchange:     e.Exchange,
		Flags:        e.Flags.String(),
		MaxFrameSize: e.MaxFrameSize,
		Heartbeat:    e.Heartbeat,
		Retries:      e.Retries,
		State:        e.state.String(),
		SessionID:    e.sessionID,
	}
}

// PublishOptions — параметры публикации, заданные флагами endpoint.
type PublishOptions struct {
	Exchange     string
	Mandatory    bool
	Immediate    bool
	DeliveryMode uint8
}

// PublishOptions возвращает параметры для Channel.PublishWithContext.
// Без флага non-persistent сообщения публикуются как persistent.
func (e *Endpoint) PublishOptions() PublishOptions {
	mode := amqp.Persistent
	if e.Flags.Has(FlagNonPersistent) {
		mode = amqp.Transient
	}

	return PublishOptions{
		Exchange:     e.Exchange,
		Mandatory:    e.Flags.Has(FlagMandatory),
		Immediate:    e.Flags.Has(FlagImmediate),
		DeliveryMode: mode,
	}
}
