package broker

import "errors"

// ErrUnknownEndpoint — endpoint с таким ID не зарегистрирован.
var ErrUnknownEndpoint = errors.New("unknown endpoint")

// ErrUnknownBinding — связка с таким именем не настроена.
var ErrUnknownBinding = errors.New("unknown binding")
