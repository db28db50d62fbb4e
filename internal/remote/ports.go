package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Operation names a remote call. The set is closed; anything else is
// rejected before it reaches a transport.
type Operation string

const (
	OpGetStatistics  Operation = "getStatistics"
	OpGetBookings    Operation = "getBookings"
	OpGetExpenses    Operation = "getExpenses"
	OpGetUsers       Operation = "getUsers"
	OpGetSettings    Operation = "getSettings"
	OpAddBooking     Operation = "addBooking"
	OpUpdateBooking  Operation = "updateBooking"
	OpDeleteBooking  Operation = "deleteBooking"
	OpRecordPayment  Operation = "recordPayment"
	OpAddExpense     Operation = "addExpense"
	OpDeleteExpense  Operation = "deleteExpense"
	OpAddUser        Operation = "addUser"
	OpDeleteUser     Operation = "deleteUser"
	OpUpdateSettings Operation = "updateSettings"
)

var ErrUnknownOperation = errors.New("unknown remote operation")

// Operations lists every operation a transport may be asked to perform.
func Operations() []Operation {
	return []Operation{
		OpGetStatistics, OpGetBookings, OpGetExpenses, OpGetUsers, OpGetSettings,
		OpAddBooking, OpUpdateBooking, OpDeleteBooking, OpRecordPayment,
		OpAddExpense, OpDeleteExpense, OpAddUser, OpDeleteUser, OpUpdateSettings,
	}
}

// Valid reports whether op belongs to the closed operation set.
func (op Operation) Valid() bool {
	for _, o := range Operations() {
		if o == op {
			return true
		}
	}
	return false
}

type (
	// Params is the optional parameter mapping sent with an operation.
	Params map[string]any

	// Envelope is the success/failure wrapper every operation returns.
	Envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data,omitempty"`
		Message string          `json:"message,omitempty"`
	}

	// Caller is the single call primitive a transport implements. Retries,
	// auth and transport details are the implementation's concern.
	Caller interface {
		Call(ctx context.Context, op Operation, params Params) (Envelope, error)
	}
)

// Failure is returned when the remote API answered with success=false.
type Failure struct {
	Op      Operation
	Message string
}

func (f *Failure) Error() string {
	if f.Message == "" {
		return fmt.Sprintf("%s: remote reported failure", f.Op)
	}
	return fmt.Sprintf("%s: %s", f.Op, f.Message)
}

// ServerMessage extracts the server-supplied message from err, if any.
func ServerMessage(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Message
	}
	return ""
}
