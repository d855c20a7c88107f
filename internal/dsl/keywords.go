package dsl

import (
	"strings"

	"github.com/shaiso/rmqlink/internal/mq"
)

type paramKind int

const (
	paramURI paramKind = iota + 1
	paramFrames
	paramRetries
	paramExchange
	paramHeartbeat
	paramFlag
)

// keyword — запись таблицы параметров.
type keyword struct {
	name     string
	kind     paramKind
	hasValue bool     // после ключевого слова обязательно '='
	flag     mq.Flags // для paramFlag
}

var keywords = []keyword{
	{name: "uri", kind: paramURI, hasValue: true},
	{name: "frames", kind: paramFrames, hasValue: true},
	{name: "retries", kind: paramRetries, hasValue: true},
	{name: "exchange", kind: paramExchange, hasValue: true},
	{name: "heartbeat", kind: paramHeartbeat, hasValue: true},
	{name: "immediate", kind: paramFlag, flag: mq.FlagImmediate},
	{name: "mandatory", kind: paramFlag, flag: mq.FlagMandatory},
	{name: "non-persistent", kind: paramFlag, flag: mq.FlagNonPersistent},
}

// matchKeyword ищет самое длинное ключевое слово, которым начинается s.
// Регистр не учитывается.
func matchKeyword(s string) (keyword, bool) {
	var (
		best  keyword
		found bool
	)
	for _, kw := range keywords {
		if len(s) < len(kw.name) || !strings.EqualFold(s[:len(kw.name)], kw.name) {
			continue
		}
		if !found || len(kw.name) > len(best.name) {
			best, found = kw, true
		}
	}
	return best, found
}
