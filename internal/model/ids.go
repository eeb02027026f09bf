// Package model holds the domain types shared across every in-scope
// component: account identity, tokens, profile and media state machines,
// and the sync-version bookkeeping used by the session layer.
package model

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// AccountId is the opaque external account identifier. It is never reused.
type AccountId struct {
	uuid uuid.UUID
}

// NewAccountId generates a fresh random AccountId.
func NewAccountId() AccountId {
	return AccountId{uuid: uuid.New()}
}

// AccountIdFromString parses the base64url wire form produced by String.
func AccountIdFromString(s string) (AccountId, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return AccountId{}, err
	}
	id, err := uuid.FromBytes(raw)
	if err != nil {
		return AccountId{}, err
	}
	return AccountId{uuid: id}, nil
}

// String renders the base64url external form.
func (a AccountId) String() string {
	b, _ := a.uuid.MarshalBinary()
	return base64.RawURLEncoding.EncodeToString(b)
}

// UUID returns the underlying UUID.
func (a AccountId) UUID() uuid.UUID { return a.uuid }

func (a AccountId) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *AccountId) UnmarshalText(text []byte) error {
	id, err := AccountIdFromString(string(text))
	if err != nil {
		return err
	}
	*a = id
	return nil
}

// AccountIdInternal is the monotonically assigned primary key used inside
// the durable store. The mapping AccountId -> AccountIdInternal is
// immutable for the lifetime of the account.
type AccountIdInternal int64

// AccessToken is a short random string issued on login.
type AccessToken string

// RefreshToken is a longer-lived random byte string, carried as its
// base64url encoding once issued.
type RefreshToken string
