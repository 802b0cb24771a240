// Package shortid convierte UUIDs en slugs cortos para links compartibles.
package shortid

import (
	"errors"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

var ErrInvalid = errors.New("invalid short id")

// FromUUID codifica los 16 bytes del UUID en base58 (~22 caracteres, sin 0/O/I/l).
func FromUUID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", ErrInvalid
	}
	return base58.Encode(u[:]), nil
}

// ToUUID revierte FromUUID.
func ToUUID(slug string) (string, error) {
	b, err := base58.Decode(slug)
	if err != nil || len(b) != 16 {
		return "", ErrInvalid
	}
	u, err := uuid.FromBytes(b)
	if err != nil {
		return "", ErrInvalid
	}
	return u.String(), nil
}
