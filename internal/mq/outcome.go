package mq

import (
	"fmt"
)

// ReplyType — тип ответа на RPC протокольного уровня.
type ReplyType int

const (
	// ReplyNormal — RPC выполнен успешно.
	ReplyNormal ReplyType = iota

	// ReplyNone — ответ на RPC не получен.
	ReplyNone

	// ReplyLibraryException — ошибка на стороне клиента (сокет, end-of-stream).
	ReplyLibraryException

	// ReplyServerException — брокер закрыл соединение или канал.
	ReplyServerException
)

// Идентификаторы AMQP методов (class << 16 | method).
const (
	MethodConnectionClose uint32 = 0x000A0032
	MethodChannelClose    uint32 = 0x00140028
)

// Outcome — результат RPC протокольного уровня.
type Outcome struct {
	Reply ReplyType

	// MethodID — метод, которым брокер сообщил об ошибке (для ReplyServerException).
	MethodID uint32

	// Code и Text — reply-code и reply-text из close-метода.
	Code int
	Text string

	// Err — исходная ошибка клиента (для ReplyLibraryException).
	Err error
}

// OK возвращает успешный Outcome.
func OK() Outcome {
	return Outcome{Reply: ReplyNormal}
}

// NoReply возвращает Outcome для отсутствующего ответа.
func NoReply() Outcome {
	return Outcome{Reply: ReplyNone}
}

// LibraryException возвращает Outcome для ошибки клиента.
func LibraryException(err error) Outcome {
	return Outcome{Reply: ReplyLibraryException, Err: err}
}

// ServerException возвращает Outcome для ошибки, присланной брокером.
func ServerException(methodID uint32, code int, text string) Outcome {
	return Outcome{Reply: ReplyServerException, MethodID: methodID, Code: code, Text: text}
}

// Reason — классифицированная причина ошибки RPC.
type Reason int

const (
	ReasonOK Reason = iota
	ReasonMissingReply
	ReasonLibraryException
	ReasonConnectionClosed
	ReasonChannelClosed
	ReasonUnknownMethod
)

// String возвращает строковое представление Reason.
func (r Reason) String() string {
	switch r {
	case ReasonOK:
		return "ok"
	case ReasonMissingReply:
		return "missing_reply"
	case ReasonLibraryException:
		return "library_exception"
	case ReasonConnectionClosed:
		return "connection_closed"
	case ReasonChannelClosed:
		return "channel_closed"
	case ReasonUnknownMethod:
		return "unknown_method"
	default:
		return "unknown"
	}
}

// Diagnosis — диагностическая запись об RPC.
type Diagnosis struct {
	// Context — операция, в рамках которой выполнялся RPC ("logging in", "opening channel").
	Context string

	Reason   Reason
	Code     int
	Text     string
	MethodID uint32
	Err      error
}

// OK возвращает true, если RPC завершился успешно.
func (d Diagnosis) OK() bool {
	return d.Reason == ReasonOK
}

// IsServerException возвращает true для ошибок, присланных брокером.
func (d Diagnosis) IsServerException() bool {
	switch d.Reason {
	case ReasonConnectionClosed, ReasonChannelClosed, ReasonUnknownMethod:
		return true
	default:
		return false
	}
}

// String форматирует диагноз для логов и ответов API.
func (d Diagnosis) String() string {
	switch d.Reason {
	case ReasonOK:
		return d.Context + ": ok"
	case ReasonMissingReply:
		return d.Context + ": missing RPC reply type"
	case ReasonLibraryException:
		if d.Err != nil {
			return fmt.Sprintf("%s: %v", d.Context, d.Err)
		}
		return d.Context + ": (end-of-stream)"
	case ReasonConnectionClosed:
		return fmt.Sprintf("%s: server connection error %d, message: %s", d.Context, d.Code, d.Text)
	case ReasonChannelClosed:
		return fmt.Sprintf("%s: server channel error %d, message: %s", d.Context, d.Code, d.Text)
	case ReasonUnknownMethod:
		return fmt.Sprintf("%s: unknown server error, method id 0x%08X", d.Context, d.MethodID)
	default:
		return d.Context + ": unknown reply"
	}
}

// Classify интерпретирует результат RPC.
// Чистая функция: решение о дальнейших действиях принимает вызывающий.
func Classify(context string, o Outcome) Diagnosis {
	d := Diagnosis{Context: context}

	switch o.Reply {
	case ReplyNormal:
		d.Reason = ReasonOK
	case ReplyNone:
		d.Reason = ReasonMissingReply
	case ReplyLibraryException:
		d.Reason = ReasonLibraryException
		d.Err = o.Err
	case ReplyServerException:
		d.MethodID = o.MethodID
		switch o.MethodID {
		case MethodConnectionClose:
			d.Reason = ReasonConnectionClosed
			d.Code, d.Text = o.Code, o.Text
		case MethodChannelClose:
			d.Reason = ReasonChannelClosed
			d.Code, d.Text = o.Code, o.Text
		default:
			d.Reason = ReasonUnknownMethod
		}
	default:
		d.Reason = ReasonMissingReply
	}

	return d
}
