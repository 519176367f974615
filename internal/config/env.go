package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "SWIPEDECK_"

// Env reads prefixed environment variables. Nested prefixes compose:
// Env{"SWIPEDECK_"}.Prefix("REDIS_").Get("ADDR") reads SWIPEDECK_REDIS_ADDR.
type Env struct {
	prefix string
	lookup func(string) (string, bool)
}

// NewEnv returns an Env over the process environment.
func NewEnv(prefix string) Env {
	return Env{prefix: prefix, lookup: os.LookupEnv}
}

// MapEnv returns an Env over a fixed map, for tests.
func MapEnv(prefix string, vars map[string]string) Env {
	return Env{prefix: prefix, lookup: func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}}
}

// Prefix returns a view with an extra key prefix.
func (e Env) Prefix(p string) Env {
	return Env{prefix: e.prefix + p, lookup: e.lookup}
}

// Lookup returns the trimmed value and whether it is set and non-empty.
func (e Env) Lookup(key string) (string, bool) {
	v, ok := e.lookup(e.prefix + key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e Env) name(key string) string { return e.prefix + key }

func (e Env) setString(key string, dst *string) {
	if v, ok := e.Lookup(key); ok {
		*dst = v
	}
}

func (e Env) setInt(key string, dst *int) error {
	v, ok := e.Lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", e.name(key), err)
	}
	*dst = n
	return nil
}

func (e Env) setFloat(key string, dst *float64) error {
	v, ok := e.Lookup(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", e.name(key), err)
	}
	*dst = f
	return nil
}

func (e Env) setDuration(key string, dst *time.Duration) error {
	v, ok := e.Lookup(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", e.name(key), err)
	}
	*dst = d
	return nil
}

func (e Env) setBool(key string, dst *bool) error {
	v, ok := e.Lookup(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", e.name(key), err)
	}
	*dst = b
	return nil
}
