package function

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"bakery-be/internal/apperr"
	"bakery-be/internal/logger"
	"bakery-be/internal/utils"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler serves one action. data is the raw "data" member of the call.
type Handler func(ctx context.Context, data json.RawMessage) (any, error)

// Access is who may call a function.
type Access int

const (
	Public Access = iota
	Authenticated
	AdminOnly
)

type function struct {
	access  Access
	actions map[string]Handler
}

type Registry struct {
	functions map[string]*function
}

func NewRegistry() *Registry {
	return &Registry{functions: map[string]*function{}}
}

// Define declares a function and who may call it. Defining a function twice
// keeps the first access level.
func (r *Registry) Define(name string, access Access) {
	if _, ok := r.functions[name]; ok {
		return
	}
	r.functions[name] = &function{access: access, actions: map[string]Handler{}}
}

// Register adds an action to fn, defining fn as Authenticated if needed.
func (r *Registry) Register(fn, action string, h Handler) {
	r.Define(fn, Authenticated)
	if _, dup := r.functions[fn].actions[action]; dup {
		panic(fmt.Sprintf("function: %s.%s registered twice", fn, action))
	}
	r.functions[fn].actions[action] = h
}

// Actions lists the actions of fn.
func (r *Registry) Actions(fn string) []string {
	f, ok := r.functions[fn]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(f.actions))
	for name := range f.actions {
		names = append(names, name)
	}
	return names
}

// Dispatch runs the action named in req on fn after the access check.
func (r *Registry) Dispatch(ctx context.Context, fn string, req Request) (any, error) {
	f, ok := r.functions[fn]
	if !ok {
		return nil, apperr.With(ErrUnknownFunction, fn)
	}
	h, ok := f.actions[req.Action]
	if !ok {
		return nil, apperr.With(ErrUnknownAction, fn+"."+req.Action)
	}

	_, authed := utils.GetUserIDFromContext(ctx)
	switch f.access {
	case Authenticated:
		if !authed {
			return nil, ErrUnauthenticated
		}
	case AdminOnly:
		if !authed {
			return nil, ErrUnauthenticated
		}
		if !utils.IsAdmin(ctx) {
			logger.FromCtx(ctx).Warn("non-admin called admin function", zap.String("action", req.Action))
			return nil, ErrAdminOnly
		}
	}

	return h(ctx, req.Data)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Bind adapts a typed handler: data is decoded into Req and checked against
// its validate tags before fn runs.
func Bind[Req any, Resp any](fn func(ctx context.Context, req Req) (Resp, error)) Handler {
	return func(ctx context.Context, data json.RawMessage) (any, error) {
		var req Req
		if len(data) > 0 && string(data) != "null" {
			if err := json.Unmarshal(data, &req); err != nil {
				return nil, apperr.With(ErrInvalidData, "malformed data")
			}
		}
		if err := validateStruct(req); err != nil {
			return nil, err
		}
		return fn(ctx, req)
	}
}

func validateStruct(req any) error {
	if reflect.Indirect(reflect.ValueOf(req)).Kind() != reflect.Struct {
		return nil
	}
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fieldPath(fe), fe.Tag()))
	}
	return apperr.With(ErrInvalidData, strings.Join(msgs, "; "))
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
