package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/ukydev/aivodrive/internal/validation"
)

// errFormInvalid is returned once the field errors of a rejected form are printed.
var errFormInvalid = errors.New("the form has errors, nothing was saved")

// formFlags binds one flag per form field. fill copies only the flags given on the
// command line, so an edit keeps every field that was left out.
type formFlags[F any] struct {
	cmd  *cobra.Command
	sets []func(*F) error
}

func newFormFlags[F any](cmd *cobra.Command) *formFlags[F] {
	return &formFlags[F]{cmd: cmd}
}

func (ff *formFlags[F]) given(name string) bool {
	return ff.cmd.Flags().Changed(name)
}

func (ff *formFlags[F]) text(name, usage string, field func(*F) *string) {
	v := new(string)
	ff.cmd.Flags().StringVar(v, name, "", usage)
	ff.sets = append(ff.sets, func(f *F) error {
		if ff.given(name) {
			*field(f) = *v
		}
		return nil
	})
}

func (ff *formFlags[F]) integer(name, usage string, field func(*F) *int) {
	v := new(int)
	ff.cmd.Flags().IntVar(v, name, 0, usage)
	ff.sets = append(ff.sets, func(f *F) error {
		if ff.given(name) {
			*field(f) = *v
		}
		return nil
	})
}

func (ff *formFlags[F]) number(name, usage string, field func(*F) *float64) {
	v := new(float64)
	ff.cmd.Flags().Float64Var(v, name, 0, usage)
	ff.sets = append(ff.sets, func(f *F) error {
		if ff.given(name) {
			*field(f) = *v
		}
		return nil
	})
}

func (ff *formFlags[F]) date(name, usage string, field func(*F) *time.Time) {
	v := new(string)
	ff.cmd.Flags().StringVar(v, name, "", usage+" (YYYY-MM-DD or YYYY-MM-DD HH:MM)")
	ff.sets = append(ff.sets, func(f *F) error {
		if !ff.given(name) {
			return nil
		}
		t, err := parseWhen(*v)
		if err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
		*field(f) = t
		return nil
	})
}

// optionalDate is date for nullable fields; an empty value clears the field.
func (ff *formFlags[F]) optionalDate(name, usage string, field func(*F) **time.Time) {
	v := new(string)
	ff.cmd.Flags().StringVar(v, name, "", usage+" (empty to clear)")
	ff.sets = append(ff.sets, func(f *F) error {
		if !ff.given(name) {
			return nil
		}
		if strings.TrimSpace(*v) == "" {
			*field(f) = nil
			return nil
		}
		t, err := parseWhen(*v)
		if err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
		*field(f) = &t
		return nil
	})
}

// fill applies the given flags to f.
func (ff *formFlags[F]) fill(f *F) error {
	for _, set := range ff.sets {
		if err := set(f); err != nil {
			return err
		}
	}
	return nil
}

var whenLayouts = []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}

func parseWhen(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range whenLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a date", s)
}

// saveError prints the field errors of a form rejected before sending. Any other
// error came from the API and goes through the session first.
func (a *app) saveError(out io.Writer, err error) error {
	fields, ok := validation.FieldErrors(err)
	if !ok {
		a.session.HandleError(err)
		return err
	}
	fmt.Fprintln(out, "Please fix the following fields:")
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		fmt.Fprintf(out, "  %-18s %s\n", name, fields[name])
	}
	return errFormInvalid
}
