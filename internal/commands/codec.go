// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package commands

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	keyDescription = "description"
	keyTimeout     = "timeout"
	keySteps       = "steps"
	keyPattern     = "pattern"
)

// legacyStepsKey matches the old "steps <seconds>" form that carried the timeout in the key.
var legacyStepsKey = regexp.MustCompile(`^steps\s+(\S+)$`)

// DecodeRecord builds a record from the generic YAML value of one definition.
// The result is validated.
func DecodeRecord(name string, raw any) (Record, error) {
	body, ok := raw.(map[string]any)
	if !ok {
		return Record{}, NewInvalidRecordError(name, fmt.Errorf("definition must be a mapping, got %T", raw))
	}

	r := Record{Name: name}

	var (
		rawSteps  any
		hasSteps  bool
		legacyTTL time.Duration
	)

	for _, k := range sortedKeys(body) {
		v := body[k]

		switch {
		case k == keyDescription:
			r.Description = scalarString(v)
		case k == keyTimeout:
			d, err := ParseTimeout(v)
			if err != nil {
				return Record{}, NewInvalidRecordError(name, err)
			}

			r.Timeout = d
		case k == keySteps:
			rawSteps, hasSteps = v, true
		case legacyStepsKey.MatchString(k):
			d, err := ParseTimeout(legacyStepsKey.FindStringSubmatch(k)[1])
			if err != nil {
				return Record{}, NewInvalidRecordError(name, err)
			}

			legacyTTL = d

			if !hasSteps {
				rawSteps = v
			}
		}
	}

	if r.Timeout == 0 {
		r.Timeout = legacyTTL
	}

	if rawSteps != nil {
		list, ok := rawSteps.([]any)
		if !ok {
			return Record{}, NewInvalidRecordError(name, fmt.Errorf("%w: steps must be a list", ErrInvalidStep))
		}

		for i, item := range list {
			s, err := decodeStep(item)
			if err != nil {
				return Record{}, NewInvalidRecordError(name, fmt.Errorf("step %d: %w", i+1, err))
			}

			r.Steps = append(r.Steps, s)
		}
	}

	if err := r.Validate(); err != nil {
		return Record{}, err
	}

	return r, nil
}

func decodeStep(item any) (Step, error) {
	m, ok := item.(map[string]any)
	if !ok {
		return Step{}, fmt.Errorf("%w: expected a mapping, got %T", ErrInvalidStep, item)
	}

	var (
		s     Step
		found int
	)

	for _, kind := range []StepKind{StepCommand, StepSend, StepPressKey, StepExpect} {
		v, ok := m[string(kind)]
		if !ok {
			continue
		}

		found++
		s.Kind = kind

		if kind != StepExpect {
			s.Value = scalarString(v)
			continue
		}

		if obj, ok := v.(map[string]any); ok {
			s.Value = scalarString(obj[keyPattern])

			d, err := ParseTimeout(obj[keyTimeout])
			if err != nil {
				return Step{}, err
			}

			s.Timeout = d

			continue
		}

		s.Value = scalarString(v)
	}

	if found != 1 {
		return Step{}, fmt.Errorf("%w: need exactly one of command, send, press_key or expect", ErrInvalidStep)
	}

	if t, ok := m[keyTimeout]; ok && s.Kind == StepExpect && s.Timeout == 0 {
		d, err := ParseTimeout(t)
		if err != nil {
			return Step{}, err
		}

		s.Timeout = d
	}

	return s, s.Validate()
}

// EncodeRecord renders a record in the definition file layout.
func EncodeRecord(r Record) yaml.MapSlice {
	body := yaml.MapSlice{{Key: keyDescription, Value: r.Description}}

	if r.Timeout > 0 {
		body = append(body, yaml.MapItem{Key: keyTimeout, Value: seconds(r.Timeout)})
	}

	steps := make([]any, 0, len(r.Steps))

	for _, s := range r.Steps {
		var v any = s.Value
		if s.Kind == StepExpect && s.Timeout > 0 {
			v = yaml.MapSlice{
				{Key: keyPattern, Value: s.Value},
				{Key: keyTimeout, Value: seconds(s.Timeout)},
			}
		}

		steps = append(steps, yaml.MapSlice{{Key: string(s.Kind), Value: v}})
	}

	return append(body, yaml.MapItem{Key: keySteps, Value: steps})
}

// maxTimeoutSeconds keeps timeouts within what a time.Duration can hold.
const maxTimeoutSeconds = float64(math.MaxInt64 / int64(time.Second))

// ParseTimeout reads a timeout in seconds. Strings may also use time.ParseDuration syntax.
// A nil value is no timeout.
func ParseTimeout(v any) (time.Duration, error) {
	var secs float64

	switch t := v.(type) {
	case nil:
		return 0, nil
	case int:
		secs = float64(t)
	case int64:
		secs = float64(t)
	case uint64:
		secs = float64(t)
	case float64:
		secs = t
	case string:
		t = strings.TrimSpace(t)
		if t == "" {
			return 0, nil
		}

		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			d, derr := time.ParseDuration(t)
			if derr != nil {
				return 0, fmt.Errorf("%w: '%s'", ErrInvalidTimeout, t)
			}

			f = d.Seconds()
		}

		secs = f
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidTimeout, v)
	}

	if secs < 0 || math.IsNaN(secs) || secs >= maxTimeoutSeconds {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTimeout, v)
	}

	return time.Duration(secs * float64(time.Second)), nil
}

func seconds(d time.Duration) any {
	if d%time.Second == 0 {
		return int64(d / time.Second)
	}

	return d.Seconds()
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// sortedKeys puts "steps" before legacy keys so an explicit list wins.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
