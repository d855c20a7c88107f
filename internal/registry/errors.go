package registry

import "errors"

// ErrDuplicateConnectionID — endpoint с таким ID уже зарегистрирован.
var ErrDuplicateConnectionID = errors.New("duplicate connection id")
