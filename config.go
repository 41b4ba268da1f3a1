package routegen

import (
	"errors"
	"fmt"
	"go/token"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/broady/routegen/sink"
)

// Config holds the settings of one generation run.
//
// Values come from three places, in increasing precedence: defaults,
// //route:config directives in the scanned packages, and fields set
// explicitly by the caller (the CLI flags or Generator methods).
type Config struct {
	// Package is the package clause of the generated file.
	// Default: "routes"
	Package string `schema:"Package" validate:"required,goident"`

	// Output is the generated source file name, relative to the output
	// directory.
	// Default: "routes_gen.go"
	Output string `schema:"Output" validate:"required,relpath,endswith=.go"`

	// Manifest, if set, also writes a JSON (or, for .yaml/.yml, YAML)
	// description of the routing model.
	Manifest string `schema:"Manifest" validate:"omitempty,relpath"`

	// Workers bounds concurrent group assembly. Zero means GOMAXPROCS.
	Workers int `schema:"Workers" validate:"gte=0,lte=1024"`

	// Strict turns conflict diagnostics into an error. Nil means unset, so
	// an explicit false can override a directive.
	Strict *bool `schema:"Strict"`

	// Logger receives debug output and diagnostics. Default: slog.Default()
	Logger *slog.Logger `schema:"-" validate:"-"`
}

var (
	validate      = validator.New()
	schemaDecoder = schema.NewDecoder()
)

func init() {
	schemaDecoder.IgnoreUnknownKeys(false)
	schemaDecoder.ZeroEmpty(true)

	// Registration only fails for an empty tag or nil function.
	_ = validate.RegisterValidation("goident", func(fl validator.FieldLevel) bool {
		return token.IsIdentifier(fl.Field().String())
	})
	_ = validate.RegisterValidation("relpath", func(fl validator.FieldLevel) bool {
		return sink.ValidateName(fl.Field().String()) == nil
	})
}

// applyConfigDefaults fills unset fields. It returns a copy.
func applyConfigDefaults(cfg Config) Config {
	if cfg.Package == "" {
		cfg.Package = "routes"
	}
	if cfg.Output == "" {
		cfg.Output = "routes_gen.go"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

// Validate reports every invalid field of cfg. The error wraps
// ErrInvalidConfig.
func (cfg Config) Validate() error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		msgs = append(msgs, ve.Field()+": "+formatValidationError(ve))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// DecodeDirectives reads the Key=value pairs of //route:config directives
// into a Config. Unknown keys are an error.
func DecodeDirectives(values url.Values) (Config, error) {
	var cfg Config
	if len(values) == 0 {
		return cfg, nil
	}
	if err := schemaDecoder.Decode(&cfg, values); err != nil {
		return Config{}, fmt.Errorf("%w: //route:config: %s", ErrInvalidConfig, describeDecodeError(err))
	}
	return cfg, nil
}

// overlay returns base with every non-zero field of top applied over it.
func overlay(base, top Config) Config {
	if top.Package != "" {
		base.Package = top.Package
	}
	if top.Output != "" {
		base.Output = top.Output
	}
	if top.Manifest != "" {
		base.Manifest = top.Manifest
	}
	if top.Workers != 0 {
		base.Workers = top.Workers
	}
	if top.Strict != nil {
		base.Strict = top.Strict
	}
	if top.Logger != nil {
		base.Logger = top.Logger
	}
	return base
}

// strict reports whether conflicts fail the run.
func (cfg Config) strict() bool {
	return cfg.Strict != nil && *cfg.Strict
}

func describeDecodeError(err error) string {
	var multi schema.MultiError
	if !errors.As(err, &multi) {
		return err.Error()
	}
	keys := make([]string, 0, len(multi))
	for k := range multi {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		var unknown schema.UnknownKeyError
		if errors.As(multi[k], &unknown) {
			msgs = append(msgs, "unknown key "+k)
			continue
		}
		msgs = append(msgs, k+": "+multi[k].Error())
	}
	return strings.Join(msgs, "; ")
}

func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "goident":
		return fmt.Sprintf("%q is not a Go identifier", ve.Value())
	case "relpath":
		return fmt.Sprintf("%q must be a clean relative path", ve.Value())
	case "endswith":
		return fmt.Sprintf("must end with %s", ve.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
