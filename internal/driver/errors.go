package driver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Kind groups driver failures by how a caller should react to them.
type Kind int

const (
	KindConnection Kind = iota + 1
	KindQuery
	KindTransient
)

var (
	ErrConnection = errors.New("connection error")
	ErrQuery      = errors.New("query error")
	ErrTransient  = errors.New("transient error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindConnection:
		return ErrConnection
	case KindQuery:
		return ErrQuery
	case KindTransient:
		return ErrTransient
	}
	return nil
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return "unknown error"
}

// Error carries the Kind of a failed operation together with the driver cause.
// errors.Is(err, ErrQuery) and friends match on Kind.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// IsRetryable reports whether err was classified as a TransientError.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient)
}

func connectionError(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindConnection, Op: op, Err: err}
}

// classifyQuery maps an error returned while running a transaction to a Kind.
// Authentication and unknown-database failures only surface once the first
// transaction is started, so they count as connection errors here as well,
// as does a connection lost or refused mid-query.
func classifyQuery(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: queryKind(err), Op: op, Err: err}
}

func queryKind(err error) Kind {
	if neo4j.IsTransactionExecutionLimit(err) {
		return KindTransient
	}

	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		switch {
		case strings.HasPrefix(neoErr.Code, "Neo.TransientError."):
			return KindTransient
		case strings.HasPrefix(neoErr.Code, "Neo.ClientError.Security."),
			neoErr.Code == "Neo.ClientError.Database.DatabaseNotFound":
			return KindConnection
		}
		return KindQuery
	}

	var connErr *neo4j.ConnectivityError
	if errors.As(err, &connErr) {
		return KindConnection
	}
	if neo4j.IsRetryable(err) {
		return KindTransient
	}
	return KindQuery
}
