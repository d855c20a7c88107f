package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AddressParser разбирает адрес брокера.
type AddressParser func(text string) (URI, error)

// ParseAddress разбирает стандартный AMQP URI через amqp091-go.
//
// Значения по умолчанию (guest/guest, localhost, 5672, vhost "/")
// подставляются библиотекой. Схема amqps выставляет Secure.
func ParseAddress(text string) (URI, error) {
	u, err := amqp.ParseURI(text)
	if err != nil {
		return URI{}, fmt.Errorf("parse amqp uri: %w", err)
	}

	return URI{
		Host:     u.Host,
		Port:     u.Port,
		VHost:    u.Vhost,
		User:     u.Username,
		Password: u.Password,
		Secure:   u.Scheme == "amqps",
	}, nil
}
