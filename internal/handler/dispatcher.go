package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/famdo/internal/coordinator"
	"github.com/dukerupert/famdo/internal/model"
	"github.com/dukerupert/famdo/internal/websocket"
)

// haUserPrefix marks an actor id that names an external auth user rather
// than a member.
const haUserPrefix = "ha_user:"

type commandFunc func(ctx context.Context, data []byte) (any, error)

// Dispatcher routes famdo/<command> messages to the coordinator. It is
// shared by the websocket clients and the HTTP command endpoint.
type Dispatcher struct {
	coord    *coordinator.Coordinator
	validate *validator.Validate
	logger   *slog.Logger
	commands map[string]commandFunc
}

func NewDispatcher(coord *coordinator.Coordinator, logger *slog.Logger) *Dispatcher {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Patch fields validate their value when one is given.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		n := field.Interface().(model.Nullable[string])
		if n.Value == nil {
			return ""
		}
		return *n.Value
	}, model.Nullable[string]{})
	d := &Dispatcher{
		coord:    coord,
		validate: v,
		logger:   logger,
		commands: make(map[string]commandFunc),
	}
	d.registerCommands()
	return d
}

func (d *Dispatcher) handle(name string, fn commandFunc) {
	d.commands[websocket.Namespace+"/"+name] = fn
}

// Commands lists the registered command types.
func (d *Dispatcher) Commands() []string {
	out := make([]string, 0, len(d.commands))
	for name := range d.commands {
		out = append(out, name)
	}
	return out
}

// HandleCommand decodes one command message, runs it, and builds the
// response envelope.
func (d *Dispatcher) HandleCommand(ctx context.Context, data []byte) websocket.Response {
	var req websocket.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return websocket.Failure(0, websocket.CodeInvalidFormat, "malformed command")
	}

	fn, ok := d.commands[req.Type]
	if !ok {
		return websocket.Failure(req.ID, websocket.CodeUnknownCommand, fmt.Sprintf("Unknown command: %s", req.Type))
	}

	result, err := fn(ctx, data)
	if err != nil {
		var cerr *commandError
		if errors.As(err, &cerr) {
			d.logger.Debug("command refused", "type", req.Type, "code", cerr.code, "reason", cerr.message)
			return websocket.Failure(req.ID, cerr.code, cerr.message)
		}
		d.logger.Error("command failed", "type", req.Type, "error", err)
		return websocket.Failure(req.ID, websocket.CodeInternalError, "internal error")
	}
	return websocket.Success(req.ID, result)
}

type commandError struct {
	code    string
	message string
}

func (e *commandError) Error() string {
	return e.code + ": " + e.message
}

func refused(message string) error {
	return &commandError{code: websocket.CodeFailed, message: message}
}

func invalid(message string) error {
	return &commandError{code: websocket.CodeInvalidFormat, message: message}
}

// command decodes and validates a payload of type P before calling fn.
func command[P any](d *Dispatcher, fn func(ctx context.Context, p *P) (any, error)) commandFunc {
	return func(ctx context.Context, data []byte) (any, error) {
		p := new(P)
		if err := json.Unmarshal(data, p); err != nil {
			return nil, invalid(fmt.Sprintf("decode payload: %v", err))
		}
		if err := d.validate.Struct(p); err != nil {
			return nil, invalid(validationMessage(err))
		}
		return fn(ctx, p)
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// entity turns a (nil, nil) refusal into a failed response.
func entity[T any](v *T, err error, refusal string) (any, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, refused(refusal)
	}
	return v, nil
}

func deleted(ok bool, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return map[string]any{"success": ok}, nil
}

func counted(n int, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return map[string]any{"success": true, "count": n}, nil
}

// resolveActor maps ha_user:<id> to the member linked to that user. Other
// ids, and unlinked users, pass through unchanged.
func (d *Dispatcher) resolveActor(id string) (string, error) {
	userID, ok := strings.CutPrefix(id, haUserPrefix)
	if !ok {
		return id, nil
	}
	doc, err := d.coord.Data()
	if err != nil {
		return "", err
	}
	if m := doc.MemberByHAUser(userID); m != nil {
		return m.ID, nil
	}
	d.logger.Debug("unlinked auth user", "ha_user_id", userID)
	return id, nil
}
